package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/graphledger-backend/internal/domain/moderation"
)

var ModerationAggregateContract = Contract{
	Name:        "Graphs.ModerationAggregate",
	TxOwnership: TxOwnedByAggregate,
	Notes: "Owns the pending->approved|rejected transition. Decisions use a conditional " +
		"update on status='pending' instead of a row lock; approval also appends a version " +
		"and advances the model pointer in the same transaction.",
}

// ModerationAggregate owns weight-change request transitions.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type ModerationAggregate interface {
	Aggregate

	// CreateRequest records a pending proposal for an edge of the current version.
	CreateRequest(ctx context.Context, in CreateWeightChangeInput) (*moderation.WeightChangeRequest, error)

	// Approve blends the proposal into the edge weight and materializes a new version.
	Approve(ctx context.Context, in ApproveWeightChangeInput) (ApproveWeightChangeResult, error)

	// Reject closes the request without touching any version.
	Reject(ctx context.Context, in RejectWeightChangeInput) (RejectWeightChangeResult, error)
}

type CreateWeightChangeInput struct {
	ModelID     uuid.UUID
	RequesterID uuid.UUID
	From        string
	To          string
	Weight      float64
}

type ApproveWeightChangeInput struct {
	ModelID    uuid.UUID
	RequestID  uuid.UUID
	ApproverID uuid.UUID
}

type ApproveWeightChangeResult struct {
	RequestID      uuid.UUID       `json:"request_id"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	PreviousWeight decimal.Decimal `json:"previous_weight"`
	NewWeight      decimal.Decimal `json:"new_weight"`
	AlphaUsed      float64         `json:"alpha_used"`
	VersionNumber  int             `json:"version_number"`
	DecidedAt      time.Time       `json:"decided_at"`
}

type RejectWeightChangeInput struct {
	ModelID    uuid.UUID
	RequestID  uuid.UUID
	ApproverID uuid.UUID
	Reason     string
}

type RejectWeightChangeResult struct {
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	DecidedAt time.Time `json:"decided_at"`
}
