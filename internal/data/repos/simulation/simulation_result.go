package simulation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

const resultBatchSize = 500

type SimulationResultRepo interface {
	Create(dbc dbctx.Context, rows []*types.SimulationResult) ([]*types.SimulationResult, error)
	ListBySimulation(dbc dbctx.Context, simulationID uuid.UUID) ([]*types.SimulationResult, error)
}

type simulationResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimulationResultRepo(db *gorm.DB, baseLog *logger.Logger) SimulationResultRepo {
	return &simulationResultRepo{db: db, log: baseLog.With("repo", "SimulationResultRepo")}
}

func (r *simulationResultRepo) Create(dbc dbctx.Context, rows []*types.SimulationResult) ([]*types.SimulationResult, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.SimulationResult{}, nil
	}
	if err := t.WithContext(dbc.Ctx).CreateInBatches(&rows, resultBatchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *simulationResultRepo) ListBySimulation(dbc dbctx.Context, simulationID uuid.UUID) ([]*types.SimulationResult, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.SimulationResult
	if simulationID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("simulation_id = ?", simulationID).
		Order("step_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
