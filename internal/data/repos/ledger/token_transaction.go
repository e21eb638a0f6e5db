package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// TokenTransactionRepo is append-only: there is no update or delete.
type TokenTransactionRepo interface {
	Create(dbc dbctx.Context, rows []*types.TokenTransaction) ([]*types.TokenTransaction, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.TokenTransaction, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	// SumDiffByUser replays every diff recorded for the user.
	SumDiffByUser(dbc dbctx.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type tokenTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTokenTransactionRepo(db *gorm.DB, baseLog *logger.Logger) TokenTransactionRepo {
	return &tokenTransactionRepo{db: db, log: baseLog.With("repo", "TokenTransactionRepo")}
}

func (r *tokenTransactionRepo) Create(dbc dbctx.Context, rows []*types.TokenTransaction) ([]*types.TokenTransaction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.TokenTransaction{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tokenTransactionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.TokenTransaction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TokenTransaction
	if userID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tokenTransactionRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.TokenTransaction{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *tokenTransactionRepo) SumDiffByUser(dbc dbctx.Context, userID uuid.UUID) (decimal.Decimal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var sum decimal.NullDecimal
	err := t.WithContext(dbc.Ctx).
		Model(&types.TokenTransaction{}).
		Select("SUM(diff)").
		Where("user_id = ?", userID).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}
