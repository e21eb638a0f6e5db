package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
	"github.com/yungbote/graphledger-backend/internal/graph"
)

var ModelAggregateContract = Contract{
	Name:        "Graphs.ModelAggregate",
	TxOwnership: TxOwnedByAggregate,
	Notes: "Owns model creation (model row + version 1 + charge) and paid execution " +
		"(current version read + path search + charge) as single transactions.",
}

// ModelAggregate owns the model/version/charge invariants.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInsufficientTokens, CodeNoPathFound,
// CodeRetryable, CodeInternal.
type ModelAggregate interface {
	Aggregate

	// CreateModelWithVersion inserts the model, its first version and debits graph cost atomically.
	CreateModelWithVersion(ctx context.Context, in CreateModelInput) (CreateModelResult, error)

	// ExecuteModel runs a shortest-path query on the current version and debits graph cost.
	// Nothing is charged when no path exists.
	ExecuteModel(ctx context.Context, in ExecuteModelInput) (ExecuteModelResult, error)

	// GetLatestVersion returns the version referenced by the model's current_version pointer.
	GetLatestVersion(ctx context.Context, modelID uuid.UUID) (*modeling.Version, error)
}

type CreateModelInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Graph       graph.Graph
}

type CreateModelResult struct {
	Model   *modeling.Model   `json:"model"`
	Version *modeling.Version `json:"version"`
	Charge  BalanceChange     `json:"charge"`
}

type ExecuteModelInput struct {
	ModelID uuid.UUID
	UserID  uuid.UUID
	Start   string
	Goal    string
}

type ExecuteModelResult struct {
	ModelID       uuid.UUID       `json:"model_id"`
	VersionNumber int             `json:"version_number"`
	Path          []string        `json:"path"`
	PathCost      float64         `json:"path_cost"`
	Charged       decimal.Decimal `json:"charged"`
	Remaining     decimal.Decimal `json:"remaining_tokens"`
	ExecTime      time.Duration   `json:"-"`
	ExecTimeMs    float64         `json:"exec_time_ms"`
}
