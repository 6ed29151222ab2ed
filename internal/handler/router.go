package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"parking-hold-engine/internal/handler/api"
	"parking-hold-engine/internal/handler/middleware"
	"parking-hold-engine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Hold      *api.HoldHandler
	Slot      *api.SlotHandler
	Occupancy *api.OccupancyHandler
	Feed      *api.FeedHandler
}

type Middlewares struct {
	Logger  *middleware.Logger
	Auth    *middleware.AuthMiddleware
	EdgeKey *middleware.EdgeKeyMiddleware
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, mw Middlewares) {
	setupMiddleware(engine, cfg, mw)
	setupRoutes(engine, h, mw)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, mw Middlewares) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(mw.Logger.LoggingMiddleware())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, mw Middlewares) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	edgeOnly := []gin.HandlerFunc{mw.EdgeKey.RequireEdgeKey()}

	apiGroup := engine.Group("/api")
	apiGroup.Use(mw.Auth.OptionalAuth())
	{
		holds := apiGroup.Group("/holds")
		{
			addRoutes(holds, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Hold.PlaceHold},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Hold.GetHold},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Hold.ConfirmHold},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Hold.CancelHold},
				{Method: http.MethodPost, Path: "/:id/release", Handler: h.Hold.ReleaseHold},
			})
		}

		slots := apiGroup.Group("/slots")
		{
			addRoutes(slots, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Slot.ListSlots},
				{Method: http.MethodPost, Path: "", Handler: h.Slot.CreateSlot, Mw: edgeOnly},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Slot.GetSlot},
				{Method: http.MethodPatch, Path: "/:id", Handler: h.Slot.UpdateSlot, Mw: edgeOnly},
				{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Slot.GetAvailability},
				{Method: http.MethodGet, Path: "/:id/occupancy", Handler: h.Occupancy.GetOccupancy},
				{Method: http.MethodPut, Path: "/:id/occupancy", Handler: h.Occupancy.SetOccupancy, Mw: edgeOnly},
				{Method: http.MethodPut, Path: "/:id/prediction", Handler: h.Occupancy.SetPrediction, Mw: edgeOnly},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/availability", Handler: h.Slot.ListAvailability},
			{Method: http.MethodGet, Path: "/events", Handler: h.Feed.ListEvents},
			{Method: http.MethodGet, Path: "/overstays", Handler: h.Feed.ListOverstays},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
