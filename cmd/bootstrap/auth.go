package bootstrap

import (
	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/pkg/jwt"

	"go.uber.org/fx"
)

var AuthModule = fx.Module("auth",
	fx.Provide(
		NewJWTVerifier,
	),
)

func NewJWTVerifier(cfg config.Config) *jwt.Verifier {
	return jwt.NewVerifier(cfg.Auth.JWTSecret)
}
