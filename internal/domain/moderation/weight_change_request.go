package moderation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the three request states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// WeightChangeRequest proposes a new weight for one directed edge. It moves from pending to
// approved or rejected exactly once; decision fields are only set by that transition.
type WeightChangeRequest struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ModelID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_wcr_model_status,priority:1;column:model_id" json:"model_id"`
	Model          *modeling.Model `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModelID;references:ID" json:"-"`
	RequesterID    uuid.UUID       `gorm:"type:uuid;not null;column:requester_id" json:"requester_id"`
	FromNode       string          `gorm:"not null;column:from_node" json:"from"`
	ToNode         string          `gorm:"not null;column:to_node" json:"to"`
	ProposedWeight decimal.Decimal `gorm:"type:decimal(12,2);not null;column:proposed_weight" json:"proposed_weight"`
	Status         string          `gorm:"not null;default:pending;check:chk_wcr_status,status IN ('pending','approved','rejected');index:idx_wcr_model_status,priority:2;column:status" json:"status"`

	ReviewerID      *uuid.UUID          `gorm:"type:uuid;column:reviewer_id" json:"reviewer_id,omitempty"`
	PreviousWeight  decimal.NullDecimal `gorm:"type:decimal(12,2);column:previous_weight" json:"previous_weight"`
	AppliedWeight   decimal.NullDecimal `gorm:"type:decimal(12,2);column:applied_weight" json:"applied_weight"`
	AlphaUsed       *float64            `gorm:"column:alpha_used" json:"alpha_used,omitempty"`
	AppliedVersion  *int                `gorm:"column:applied_version" json:"applied_version,omitempty"`
	RejectionReason *string             `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time          `gorm:"column:decided_at" json:"decided_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (WeightChangeRequest) TableName() string { return "weight_change_requests" }

func (r *WeightChangeRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}
