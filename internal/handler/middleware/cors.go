package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"parking-hold-engine/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Headers the API depends on regardless of operator overrides: browser dashboards must be able to
// send the edge key and read the retry hint of a 503.
var (
	requiredAllowHeaders  = []string{EdgeKeyHeader, "Authorization", "Content-Type", RequestIDHeader}
	requiredExposeHeaders = []string{"Retry-After", RequestIDHeader}
)

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeaders(cfg.AllowHeaders, requiredAllowHeaders),
		ExposeHeaders:    withHeaders(cfg.ExposeHeaders, requiredExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		// Browsers reject credentialed responses to a wildcard origin
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	slog.Info("cors configured",
		"allow_origins", cfg.AllowOrigins,
		"allow_headers", corsCfg.AllowHeaders,
		"expose_headers", corsCfg.ExposeHeaders)
	return cors.New(corsCfg)
}

func withHeaders(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		found := slices.ContainsFunc(out, func(c string) bool { return strings.EqualFold(c, h) })
		if !found {
			out = append(out, h)
		}
	}
	return out
}
