package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, hold bounds, sweep cadence, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Storage   StorageConfig
	CORS      CORSConfig
	Log       LogConfig
	Ledger    LedgerConfig
	Sweeper   SweeperConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port              string        `envconfig:"PORT" required:"true"`
	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"5s"`
	// Time allowed for in-flight ledger writes to finish on shutdown
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	Host           string        `envconfig:"DB_HOST" default:"localhost"`
	Port           string        `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER"`
	Password       string        `envconfig:"DB_PASSWORD"`
	DBName         string        `envconfig:"DB_NAME" default:"parking"`
	SSLMode        string        `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone       string        `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns       int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"30s"`
	AutoMigrate    bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver    string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	SeedSlots int    `envconfig:"SEED_SLOTS" default:"0"`
	SeedZone  string `envconfig:"SEED_ZONE" default:"zone_a"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Edge-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type LedgerConfig struct {
	MinHoldMinutes      int           `envconfig:"HOLD_MIN_MINUTES" default:"1"`
	MaxHoldMinutes      int           `envconfig:"HOLD_MAX_MINUTES" default:"60"`
	DefaultHoldMinutes  int           `envconfig:"HOLD_DEFAULT_MINUTES" default:"2"`
	OccupancyThreshold  float64       `envconfig:"OCCUPANCY_CONFIDENCE_THRESHOLD" default:"0.6"`
	OverstayBound       time.Duration `envconfig:"OVERSTAY_BOUND" default:"2h"`
	OverstayGracePeriod time.Duration `envconfig:"OVERSTAY_GRACE" default:"15m"`
}

type SweeperConfig struct {
	Enabled   bool          `envconfig:"EXPIRY_SWEEP_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"EXPIRY_SWEEP_INTERVAL" default:"5s"`
	BatchSize int           `envconfig:"EXPIRY_SWEEP_BATCH" default:"100"`
}

type AuthConfig struct {
	// bcrypt hash of the key presented by the detection pipeline in X-Edge-Key
	EdgeAPIKeyHash string `envconfig:"EDGE_API_KEY_HASH"`
	// HS256 secret shared with the auth provider; empty disables bearer parsing
	JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
}

type TelemetryConfig struct {
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"parking-hold-engine"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c LedgerConfig) Validate() error {
	if c.MinHoldMinutes < 1 || c.MaxHoldMinutes < c.MinHoldMinutes {
		return fmt.Errorf("invalid hold bounds: min=%d max=%d", c.MinHoldMinutes, c.MaxHoldMinutes)
	}
	if c.DefaultHoldMinutes < c.MinHoldMinutes || c.DefaultHoldMinutes > c.MaxHoldMinutes {
		return fmt.Errorf("default hold minutes %d outside [%d, %d]", c.DefaultHoldMinutes, c.MinHoldMinutes, c.MaxHoldMinutes)
	}
	if c.OccupancyThreshold < 0 || c.OccupancyThreshold > 1 {
		return fmt.Errorf("occupancy threshold %v outside [0, 1]", c.OccupancyThreshold)
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Storage.Driver != StorageDriverPostgres && cfg.Storage.Driver != StorageDriverMemory {
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if err := cfg.Ledger.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:              "8889", // Test port
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   time.Second,
		},
		DB: DBConfig{
			Host:           "localhost",
			Port:           "15433", // Test DB port
			User:           "test",
			Password:       "test",
			DBName:         "test_db",
			SSLMode:        "disable",
			TimeZone:       "UTC",
			MaxConns:       20,
			ConnectTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Ledger: LedgerConfig{
			MinHoldMinutes:      1,
			MaxHoldMinutes:      60,
			DefaultHoldMinutes:  2,
			OccupancyThreshold:  0.6,
			OverstayBound:       2 * time.Hour,
			OverstayGracePeriod: 15 * time.Minute,
		},
		Sweeper: SweeperConfig{
			Enabled:   false, // Tests drive expiry explicitly
			Interval:  time.Second,
			BatchSize: 100,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "parking-hold-engine-test",
		},
	}
}
