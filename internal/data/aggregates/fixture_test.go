package aggregates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/graphledger-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	repotest "github.com/yungbote/graphledger-backend/internal/data/repos/testutil"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

// fixture wires every aggregate over one handle. Aggregate transactions become savepoints
// when the handle is itself a transaction.
type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	repos repos.Set
	hooks *aggtest.HooksRecorder

	ledger     domainagg.LedgerAggregate
	models     domainagg.ModelAggregate
	moderation domainagg.ModerationAggregate
	sims       domainagg.SimulationAggregate
}

func newFixture(t *testing.T, handle *gorm.DB, runner aggregates.TxRunner) *fixture {
	t.Helper()
	log := repotest.Logger(t)
	set := repos.NewSet(handle, log)
	hooks := &aggtest.HooksRecorder{}
	if runner == nil {
		runner = aggregates.NewGormTxRunner(handle)
	}
	base := aggregates.BaseDeps{
		DB:       handle,
		Log:      log,
		Runner:   runner,
		Hooks:    hooks,
		CASGuard: aggregates.NewCASGuard(handle),
	}
	ledger := aggregates.NewLedgerAggregate(aggregates.LedgerAggregateDeps{
		Base:   base,
		Users:  set.Users,
		Ledger: set.TokenTransactions,
	})
	return &fixture{
		ctx:    context.Background(),
		db:     handle,
		repos:  set,
		hooks:  hooks,
		ledger: ledger,
		models: aggregates.NewModelAggregate(aggregates.ModelAggregateDeps{
			Base:     base,
			Users:    set.Users,
			Models:   set.Models,
			Versions: set.Versions,
			Ledger:   ledger,
		}),
		moderation: aggregates.NewModerationAggregate(aggregates.ModerationAggregateDeps{
			Base:     base,
			Models:   set.Models,
			Versions: set.Versions,
			Requests: set.WeightChanges,
			Alpha:    0.9,
		}),
		sims: aggregates.NewSimulationAggregate(aggregates.SimulationAggregateDeps{
			Base:        base,
			Models:      set.Models,
			Versions:    set.Versions,
			Simulations: set.Simulations,
			Results:     set.SimulationResults,
			MaxSteps:    100,
		}),
	}
}

// txFixture runs everything inside a transaction rolled back at test end.
func txFixture(t *testing.T) *fixture {
	t.Helper()
	tx := repotest.Tx(t, repotest.DB(t))
	return newFixture(t, tx, nil)
}

func (f *fixture) dbc() dbctx.Context {
	return dbctx.Context{Ctx: f.ctx, Tx: f.db}
}

func (f *fixture) user(t *testing.T, id uuid.UUID) *types.User {
	t.Helper()
	u, err := f.repos.Users.GetByID(f.dbc(), id)
	if err != nil || u == nil {
		t.Fatalf("load user %s: u=%v err=%v", id, u, err)
	}
	return u
}

func (f *fixture) ledgerCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	n, err := f.repos.TokenTransactions.CountByUser(f.dbc(), userID)
	if err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	return n
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if !domainagg.IsCode(err, code) {
		t.Fatalf("want code %s, got %q (%v)", code, domainagg.CodeOf(err), err)
	}
}
