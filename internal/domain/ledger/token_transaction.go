package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/domain/user"
)

// Reason tags recorded on ledger rows.
const (
	ReasonInitialGrant  = "initial_grant"
	ReasonAdminRecharge = "admin_recharge"
	ReasonModelCreate   = "model_create"
	ReasonModelExecute  = "model_execute"
	ReasonBalanceSet    = "balance_set"
)

// TokenTransaction is one append-only balance mutation. Diff always equals NewTokens-PreviousTokens.
// PerformedByID is nil for system-initiated entries.
type TokenTransaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_token_tx_user_created,priority:1;column:user_id" json:"user_id"`
	User           *user.User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	PerformedByID  *uuid.UUID      `gorm:"type:uuid;column:performed_by_id" json:"performed_by_id,omitempty"`
	PreviousTokens decimal.Decimal `gorm:"type:decimal(12,2);not null;column:previous_tokens" json:"previous_tokens"`
	Diff           decimal.Decimal `gorm:"type:decimal(12,2);not null;column:diff" json:"diff"`
	NewTokens      decimal.Decimal `gorm:"type:decimal(12,2);not null;column:new_tokens" json:"new_tokens"`
	Reason         string          `gorm:"not null;column:reason" json:"reason"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_token_tx_user_created,priority:2" json:"created_at"`
}

func (TokenTransaction) TableName() string { return "token_transactions" }

func (t *TokenTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
