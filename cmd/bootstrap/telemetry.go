package bootstrap

import (
	"context"
	"log/slog"

	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/pkg/telemetry"

	"go.uber.org/fx"
)

var TelemetryModule = fx.Module("telemetry",
	fx.Invoke(
		InitTelemetry,
	),
)

func InitTelemetry(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) error {
	shutdown, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		return err
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		logger.Info("trace export disabled", "service", cfg.Telemetry.ServiceName)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}
