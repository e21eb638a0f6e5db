package app

import (
	"github.com/yungbote/graphledger-backend/internal/data/db"
	"github.com/yungbote/graphledger-backend/internal/http"
	httpH "github.com/yungbote/graphledger-backend/internal/http/handlers"
	httpMW "github.com/yungbote/graphledger-backend/internal/http/middleware"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	Model      *httpH.ModelHandler
	Moderation *httpH.ModerationHandler
	Simulation *httpH.SimulationHandler
}

func wireHandlers(log *logger.Logger, services Services, dbs *db.Service) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(dbs),
		Auth:       httpH.NewAuthHandler(services.Auth),
		User:       httpH.NewUserHandler(services.User),
		Model:      httpH.NewModelHandler(services.Model),
		Moderation: httpH.NewModerationHandler(services.Moderation),
		Simulation: httpH.NewSimulationHandler(services.Simulation),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	return http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		SkipMetricsRoute:  cfg.Telemetry.MetricsAddr != "",
		ServiceName:       cfg.ServiceName,
		TracingEnabled:    cfg.Telemetry.OtelEnabled,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    middleware.Auth,
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		ModelHandler:      handlers.Model,
		ModerationHandler: handlers.Moderation,
		SimulationHandler: handlers.Simulation,
		HealthHandler:     handlers.Health,
	}
}
