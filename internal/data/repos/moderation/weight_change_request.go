package moderation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// RequestFilter fields are AND-combined; zero values are ignored.
type RequestFilter struct {
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
}

type WeightChangeRequestRepo interface {
	Create(dbc dbctx.Context, rows []*types.WeightChangeRequest) ([]*types.WeightChangeRequest, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WeightChangeRequest, error)
	List(dbc dbctx.Context, modelID uuid.UUID, f RequestFilter) ([]*types.WeightChangeRequest, error)
	CountByStatus(dbc dbctx.Context, modelID uuid.UUID, status string) (int64, error)
}

type weightChangeRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeightChangeRequestRepo(db *gorm.DB, baseLog *logger.Logger) WeightChangeRequestRepo {
	return &weightChangeRequestRepo{db: db, log: baseLog.With("repo", "WeightChangeRequestRepo")}
}

func (r *weightChangeRequestRepo) Create(dbc dbctx.Context, rows []*types.WeightChangeRequest) ([]*types.WeightChangeRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.WeightChangeRequest{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *weightChangeRequestRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WeightChangeRequest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.WeightChangeRequest
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *weightChangeRequestRepo) List(dbc dbctx.Context, modelID uuid.UUID, f RequestFilter) ([]*types.WeightChangeRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.WeightChangeRequest
	q := t.WithContext(dbc.Ctx).Where("model_id = ?", modelID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FromDate != nil {
		q = q.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("created_at <= ?", *f.ToDate)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weightChangeRequestRepo) CountByStatus(dbc dbctx.Context, modelID uuid.UUID, status string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.WeightChangeRequest{}).
		Where("model_id = ? AND status = ?", modelID, status).
		Count(&n).Error
	return n, err
}
