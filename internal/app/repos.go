package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

func wireRepos(db *gorm.DB, log *logger.Logger) repos.Set {
	log.Info("Wiring repos...")
	return repos.NewSet(db, log)
}

type Aggregates struct {
	Ledger     domainagg.LedgerAggregate
	Models     domainagg.ModelAggregate
	Moderation domainagg.ModerationAggregate
	Simulation domainagg.SimulationAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{
		DB:       db,
		Log:      log,
		Runner:   aggregates.NewGormTxRunner(db),
		Hooks:    aggregates.NewObservabilityHooks(metrics),
		CASGuard: aggregates.NewCASGuard(db),
	}
	ledger := aggregates.NewLedgerAggregate(aggregates.LedgerAggregateDeps{
		Base:   base,
		Users:  set.Users,
		Ledger: set.TokenTransactions,
	})
	return Aggregates{
		Ledger: ledger,
		Models: aggregates.NewModelAggregate(aggregates.ModelAggregateDeps{
			Base:     base,
			Users:    set.Users,
			Models:   set.Models,
			Versions: set.Versions,
			Ledger:   ledger,
		}),
		Moderation: aggregates.NewModerationAggregate(aggregates.ModerationAggregateDeps{
			Base:     base,
			Models:   set.Models,
			Versions: set.Versions,
			Requests: set.WeightChanges,
			Alpha:    cfg.GraphAlpha,
		}),
		Simulation: aggregates.NewSimulationAggregate(aggregates.SimulationAggregateDeps{
			Base:        base,
			Models:      set.Models,
			Versions:    set.Versions,
			Simulations: set.Simulations,
			Results:     set.SimulationResults,
			MaxSteps:    cfg.MaxSimulationSize,
		}),
	}
}
