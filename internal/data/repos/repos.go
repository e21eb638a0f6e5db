package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/repos/ledger"
	"github.com/yungbote/graphledger-backend/internal/data/repos/modeling"
	"github.com/yungbote/graphledger-backend/internal/data/repos/moderation"
	"github.com/yungbote/graphledger-backend/internal/data/repos/simulation"
	"github.com/yungbote/graphledger-backend/internal/data/repos/user"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type TokenTransactionRepo = ledger.TokenTransactionRepo

type ModelRepo = modeling.ModelRepo
type VersionRepo = modeling.VersionRepo
type VersionFilter = modeling.VersionFilter

type WeightChangeRequestRepo = moderation.WeightChangeRequestRepo
type RequestFilter = moderation.RequestFilter

type SimulationRepo = simulation.SimulationRepo
type SimulationResultRepo = simulation.SimulationResultRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewTokenTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TokenTransactionRepo {
	return ledger.NewTokenTransactionRepo(db, baseLog)
}

func NewModelRepo(db *gorm.DB, baseLog *logger.Logger) ModelRepo {
	return modeling.NewModelRepo(db, baseLog)
}
func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	return modeling.NewVersionRepo(db, baseLog)
}

func NewWeightChangeRequestRepo(db *gorm.DB, baseLog *logger.Logger) WeightChangeRequestRepo {
	return moderation.NewWeightChangeRequestRepo(db, baseLog)
}

func NewSimulationRepo(db *gorm.DB, baseLog *logger.Logger) SimulationRepo {
	return simulation.NewSimulationRepo(db, baseLog)
}
func NewSimulationResultRepo(db *gorm.DB, baseLog *logger.Logger) SimulationResultRepo {
	return simulation.NewSimulationResultRepo(db, baseLog)
}

// Set bundles every table repo over one pool.
type Set struct {
	Users             UserRepo
	TokenTransactions TokenTransactionRepo
	Models            ModelRepo
	Versions          VersionRepo
	WeightChanges     WeightChangeRequestRepo
	Simulations       SimulationRepo
	SimulationResults SimulationResultRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:             NewUserRepo(db, baseLog),
		TokenTransactions: NewTokenTransactionRepo(db, baseLog),
		Models:            NewModelRepo(db, baseLog),
		Versions:          NewVersionRepo(db, baseLog),
		WeightChanges:     NewWeightChangeRequestRepo(db, baseLog),
		Simulations:       NewSimulationRepo(db, baseLog),
		SimulationResults: NewSimulationResultRepo(db, baseLog),
	}
}
