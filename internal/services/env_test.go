package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/cache"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	repotest "github.com/yungbote/graphledger-backend/internal/data/repos/testutil"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/graphledger-backend/internal/services"
)

const testPassword = "correct-horse"

// env wires every service over one rolled-back transaction.
type env struct {
	ctx     context.Context
	db      *gorm.DB
	repos   repos.Set
	metrics *observability.Metrics

	auth       services.AuthService
	users      services.UserService
	models     services.ModelService
	moderation services.ModerationService
	sims       services.SimulationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tx := repotest.Tx(t, repotest.DB(t))
	log := repotest.Logger(t)
	metrics := observability.New()
	set := repos.NewSet(tx, log)

	base := aggregates.BaseDeps{
		DB:       tx,
		Log:      log,
		Runner:   aggregates.NewGormTxRunner(tx),
		Hooks:    aggregates.NewObservabilityHooks(metrics),
		CASGuard: aggregates.NewCASGuard(tx),
	}
	ledger := aggregates.NewLedgerAggregate(aggregates.LedgerAggregateDeps{
		Base:   base,
		Users:  set.Users,
		Ledger: set.TokenTransactions,
	})
	modelAgg := aggregates.NewModelAggregate(aggregates.ModelAggregateDeps{
		Base:     base,
		Users:    set.Users,
		Models:   set.Models,
		Versions: set.Versions,
		Ledger:   ledger,
	})
	moderationAgg := aggregates.NewModerationAggregate(aggregates.ModerationAggregateDeps{
		Base:     base,
		Models:   set.Models,
		Versions: set.Versions,
		Requests: set.WeightChanges,
		Alpha:    0.9,
	})
	simAgg := aggregates.NewSimulationAggregate(aggregates.SimulationAggregateDeps{
		Base:        base,
		Models:      set.Models,
		Versions:    set.Versions,
		Simulations: set.Simulations,
		Results:     set.SimulationResults,
		MaxSteps:    100,
	})

	hasher, err := services.NewPasswordHasher("bcrypt", 4)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	signer, err := services.NewTokenSigner(services.SignerConfig{
		SecretKey: "test-secret",
		Issuer:    "graphledger-test",
		TTL:       time.Hour,
	})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	versionCache := cache.NewVersionCache(cache.NewMemoryStore(64), time.Minute, log, metrics)

	return &env{
		ctx:        context.Background(),
		db:         tx,
		repos:      set,
		metrics:    metrics,
		auth:       services.NewAuthService(tx, log, set.Users, ledger, hasher, signer, decimal.NewFromInt(10), metrics),
		users:      services.NewUserService(tx, log, set.Users, set.TokenTransactions, ledger, hasher, metrics),
		models:     services.NewModelService(log, modelAgg, set.Models, set.Versions, versionCache, metrics),
		moderation: services.NewModerationService(log, moderationAgg, set.Models, set.WeightChanges),
		sims:       services.NewSimulationService(log, simAgg, set.Simulations, set.SimulationResults, set.Models, metrics),
	}
}

// register creates a user with the initial grant through the auth service.
func (e *env) register(t *testing.T, prefix string) *types.User {
	t.Helper()
	u, err := e.auth.RegisterUser(e.ctx, repotest.UniqueEmail(prefix), testPassword)
	if err != nil {
		t.Fatalf("register %s: %v", prefix, err)
	}
	return u
}

func (e *env) admin(t *testing.T) *types.User {
	t.Helper()
	u, _, err := e.users.SeedAdmin(e.ctx, repotest.UniqueEmail("admin"), testPassword)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return u
}

func (e *env) as(u *types.User) context.Context {
	return ctxutil.WithRequestData(e.ctx, &ctxutil.RequestData{UserID: u.ID, Role: u.Role})
}

func (e *env) createModel(t *testing.T, owner *types.User, name string) *types.Model {
	t.Helper()
	res, err := e.models.CreateModel(e.as(owner), services.CreateModelRequest{
		Name:  name,
		Graph: repotest.SampleGraph(),
	})
	if err != nil {
		t.Fatalf("create model: %v", err)
	}
	return res.Model
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if !domainagg.IsCode(err, code) {
		t.Fatalf("want code %s, got %q (%v)", code, domainagg.CodeOf(err), err)
	}
}
