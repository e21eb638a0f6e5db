package modeling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// VersionFilter fields are AND-combined; nil fields are ignored.
type VersionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	NodeCount *int
	EdgeCount *int
}

// VersionRepo is insert-only: versions are never updated or deleted.
type VersionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Version) ([]*types.Version, error)
	GetByModelAndNumber(dbc dbctx.Context, modelID uuid.UUID, number int) (*types.Version, error)
	GetLatestByModel(dbc dbctx.Context, modelID uuid.UUID) (*types.Version, error)
	MaxVersionNumber(dbc dbctx.Context, modelID uuid.UUID) (int, error)
	List(dbc dbctx.Context, modelID uuid.UUID, f VersionFilter) ([]*types.Version, error)
}

type versionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionRepo(db *gorm.DB, baseLog *logger.Logger) VersionRepo {
	return &versionRepo{db: db, log: baseLog.With("repo", "VersionRepo")}
}

func (r *versionRepo) Create(dbc dbctx.Context, rows []*types.Version) ([]*types.Version, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Version{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *versionRepo) GetByModelAndNumber(dbc dbctx.Context, modelID uuid.UUID, number int) (*types.Version, error) {
	if modelID == uuid.Nil || number <= 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Version
	if err := t.WithContext(dbc.Ctx).
		Where("model_id = ? AND version_number = ?", modelID, number).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *versionRepo) GetLatestByModel(dbc dbctx.Context, modelID uuid.UUID) (*types.Version, error) {
	if modelID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Version
	if err := t.WithContext(dbc.Ctx).
		Where("model_id = ?", modelID).
		Order("version_number DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *versionRepo) MaxVersionNumber(dbc dbctx.Context, modelID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var maxN *int
	err := t.WithContext(dbc.Ctx).
		Model(&types.Version{}).
		Select("MAX(version_number)").
		Where("model_id = ?", modelID).
		Row().
		Scan(&maxN)
	if err != nil {
		return 0, err
	}
	if maxN == nil {
		return 0, nil
	}
	return *maxN, nil
}

func (r *versionRepo) List(dbc dbctx.Context, modelID uuid.UUID, f VersionFilter) ([]*types.Version, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Version
	q := t.WithContext(dbc.Ctx).Where("model_id = ?", modelID)
	if f.FromDate != nil {
		q = q.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("created_at <= ?", *f.ToDate)
	}
	if f.NodeCount != nil {
		q = q.Where("node_count = ?", *f.NodeCount)
	}
	if f.EdgeCount != nil {
		q = q.Where("edge_count = ?", *f.EdgeCount)
	}
	if err := q.Order("version_number DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
