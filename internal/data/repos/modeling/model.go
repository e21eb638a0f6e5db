package modeling

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type ModelRepo interface {
	Create(dbc dbctx.Context, rows []*types.Model) ([]*types.Model, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Model, error)
	GetByOwnerAndName(dbc dbctx.Context, ownerID uuid.UUID, name string) (*types.Model, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Model, error)
}

type modelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelRepo(db *gorm.DB, baseLog *logger.Logger) ModelRepo {
	return &modelRepo{db: db, log: baseLog.With("repo", "ModelRepo")}
}

func (r *modelRepo) Create(dbc dbctx.Context, rows []*types.Model) ([]*types.Model, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Model{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *modelRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Model, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Model
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *modelRepo) GetByOwnerAndName(dbc dbctx.Context, ownerID uuid.UUID, name string) (*types.Model, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Model
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *modelRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Model, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Model
	if err := t.WithContext(dbc.Ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
