package components

import (
	"parking-hold-engine/internal/handler"
	"parking-hold-engine/internal/handler/api"
	"parking-hold-engine/internal/handler/middleware"
	"parking-hold-engine/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewHoldHandler,
		api.NewSlotHandler,
		api.NewOccupancyHandler,
		api.NewFeedHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config) *middleware.EdgeKeyMiddleware {
			return middleware.NewEdgeKeyMiddleware(cfg.Auth)
		},
	),
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In

	Engine    *gin.Engine
	Config    config.Config
	Hold      *api.HoldHandler
	Slot      *api.SlotHandler
	Occupancy *api.OccupancyHandler
	Feed      *api.FeedHandler
	Logger    *middleware.Logger
	Auth      *middleware.AuthMiddleware
	EdgeKey   *middleware.EdgeKeyMiddleware
}

func registerRoutes(p routeParams) {
	handler.NewRouter(p.Engine, p.Config,
		handler.Handlers{
			Hold:      p.Hold,
			Slot:      p.Slot,
			Occupancy: p.Occupancy,
			Feed:      p.Feed,
		},
		handler.Middlewares{
			Logger:  p.Logger,
			Auth:    p.Auth,
			EdgeKey: p.EdgeKey,
		},
	)
}
