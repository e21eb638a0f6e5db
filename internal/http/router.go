package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	httpH "github.com/yungbote/graphledger-backend/internal/http/handlers"
	httpMW "github.com/yungbote/graphledger-backend/internal/http/middleware"
	"github.com/yungbote/graphledger-backend/internal/http/response"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	// SkipMetricsRoute leaves /metrics to a separate listener.
	SkipMetricsRoute bool

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	ModelHandler      *httpH.ModelHandler
	ModerationHandler *httpH.ModerationHandler
	SimulationHandler *httpH.SimulationHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "graphledger"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	r.NoRoute(func(c *gin.Context) {
		response.AbortError(c, http.StatusNotFound, "route_not_found", "route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil && !cfg.SkipMetricsRoute {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.GET("/users/me/transactions", cfg.UserHandler.ListTransactions)
			admin := protected.Group("/")
			if cfg.AuthMiddleware != nil {
				admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin))
			}
			admin.POST("/users/recharge", cfg.UserHandler.Recharge)
		}

		// Models
		if cfg.ModelHandler != nil {
			protected.POST("/models", cfg.ModelHandler.Create)
			protected.GET("/models/:modelId", cfg.ModelHandler.Get)
			protected.POST("/models/:modelId/execute", cfg.ModelHandler.Execute)
			protected.GET("/models/:modelId/versions", cfg.ModelHandler.ListVersions)
			protected.GET("/models/:modelId/versions/:versionNumber", cfg.ModelHandler.GetVersion)
		}

		// Weight changes
		if cfg.ModerationHandler != nil {
			protected.POST("/models/:modelId/weight-changes", cfg.ModerationHandler.Create)
			protected.GET("/models/:modelId/weight-changes", cfg.ModerationHandler.List)
			protected.POST("/models/:modelId/weight-changes/:requestId/approve", cfg.ModerationHandler.Approve)
			protected.POST("/models/:modelId/weight-changes/:requestId/reject", cfg.ModerationHandler.Reject)
		}

		// Simulations
		if cfg.SimulationHandler != nil {
			protected.POST("/models/:modelId/simulations", cfg.SimulationHandler.Run)
			protected.GET("/models/:modelId/simulations", cfg.SimulationHandler.ListByModel)
			protected.GET("/simulations/:simulationId", cfg.SimulationHandler.Get)
		}
	}

	return r
}
