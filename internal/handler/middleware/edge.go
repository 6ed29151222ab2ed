package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"parking-hold-engine/internal/handler/httperr"
	"parking-hold-engine/internal/pkg/apikey"
	"parking-hold-engine/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	EdgeKeyHeader = "X-Edge-Key"

	ctxEdgeCallerKey = "edge_caller"
)

// EdgeKeyMiddleware guards the write paths owned by the detection pipeline, the prediction service
// and slot administration.
type EdgeKeyMiddleware struct {
	keyHash string
}

func NewEdgeKeyMiddleware(cfg config.AuthConfig) *EdgeKeyMiddleware {
	if cfg.EdgeAPIKeyHash == "" {
		slog.Warn("EDGE_API_KEY_HASH is not set; edge write routes will reject every request")
	}
	return &EdgeKeyMiddleware{keyHash: cfg.EdgeAPIKeyHash}
}

func (m *EdgeKeyMiddleware) RequireEdgeKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := apikey.Verify(m.keyHash, c.GetHeader(EdgeKeyHeader))
		switch {
		case err == nil:
			c.Set(ctxEdgeCallerKey, true)
			c.Next()
		case errors.Is(err, apikey.ErrNotConfigured):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Edge access is not configured", nil)
		default:
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or missing edge key", nil)
		}
	}
}
