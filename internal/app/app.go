package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/graphledger-backend/internal/data/db"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	"github.com/yungbote/graphledger-backend/internal/http"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Log        *logger.Logger
	Cfg        Config
	DB         *db.Service
	Clients    Clients
	Repos      repos.Set
	Aggregates Aggregates
	Services   Services
	Metrics    *observability.Metrics
	Server     *http.Server

	shutdownOTel func(context.Context) error
}

func init() {
	// Money and weights render as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// New opens the database, runs migrations and wires the whole process.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	dbs, err := db.Open(cfg.dbConfig(), log)
	if err != nil {
		return nil, err
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	a, err := Build(ctx, log, cfg, dbs)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}
	return a, nil
}

// Build wires every layer over an already-open, migrated database.
func Build(ctx context.Context, log *logger.Logger, cfg Config, dbs *db.Service) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	shutdownOTel := observability.InitOTel(ctx, log, cfg.otelConfig())
	metrics := observability.Init(log, cfg.Telemetry.MetricsEnabled)

	theDB := dbs.DB()
	if sqlDB, err := theDB.DB(); err == nil {
		metrics.RegisterDBStats(sqlDB, cfg.ServiceName)
	}

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = shutdownOTel(ctx)
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	aggs := wireAggregates(theDB, log, cfg, reposet, metrics)
	serviceset, err := wireServices(theDB, log, cfg, reposet, aggs, clients, metrics)
	if err != nil {
		clients.Close()
		_ = shutdownOTel(ctx)
		return nil, err
	}
	handlers := wireHandlers(log, serviceset, dbs)
	middleware := wireMiddleware(log, serviceset)
	server := http.NewServer(routerConfig(log, cfg, metrics, handlers, middleware), ":"+cfg.Port)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbs,
		Clients:      clients,
		Repos:        reposet,
		Aggregates:   aggs,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.seedConfiguredAdmin(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	a.Metrics.StartServer(gctx, a.Log, a.Cfg.Telemetry.MetricsAddr)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, 0)

	g.Go(a.Server.Run)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) seedConfiguredAdmin(ctx context.Context) error {
	if a.Cfg.Auth.AdminEmail == "" || a.Cfg.Auth.AdminPassword == "" {
		return nil
	}
	u, created, err := a.Services.User.SeedAdmin(ctx, a.Cfg.Auth.AdminEmail, a.Cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	a.Log.Info("Admin account ready", "user_id", u.ID, "created", created)
	return nil
}

// Close releases everything Build and New acquired. Safe to call once after Run returns.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	a.Log.Sync()
}

// Migrate opens the database, applies the schema and closes it again.
func Migrate(log *logger.Logger, cfg Config) error {
	dbs, err := db.Open(cfg.dbConfig(), log)
	if err != nil {
		return err
	}
	defer dbs.Close()
	return dbs.AutoMigrateAll()
}
