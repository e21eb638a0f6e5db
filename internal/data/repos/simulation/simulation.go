package simulation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type SimulationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Simulation) ([]*types.Simulation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Simulation, error)
	ListByModel(dbc dbctx.Context, modelID uuid.UUID, limit int) ([]*types.Simulation, error)
}

type simulationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimulationRepo(db *gorm.DB, baseLog *logger.Logger) SimulationRepo {
	return &simulationRepo{db: db, log: baseLog.With("repo", "SimulationRepo")}
}

func (r *simulationRepo) Create(dbc dbctx.Context, rows []*types.Simulation) ([]*types.Simulation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Simulation{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *simulationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Simulation, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Simulation
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *simulationRepo) ListByModel(dbc dbctx.Context, modelID uuid.UUID, limit int) ([]*types.Simulation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Simulation
	q := t.WithContext(dbc.Ctx).
		Where("model_id = ?", modelID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
