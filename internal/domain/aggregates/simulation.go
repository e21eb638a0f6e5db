package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/domain/simulation"
)

var SimulationAggregateContract = Contract{
	Name:        "Graphs.SimulationAggregate",
	TxOwnership: TxOwnedByAggregate,
	Notes: "Reads the current version and writes one simulation header plus one result row " +
		"per sampled weight. Never mutates versions.",
}

// SimulationAggregate owns sweep persistence.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeRetryable, CodeInternal.
type SimulationAggregate interface {
	Aggregate

	// Simulate sweeps edge From->To over [Start, Stop] by Step and records a path search per sample.
	Simulate(ctx context.Context, in SimulateInput) (SimulateResult, error)
}

type SimulateInput struct {
	ModelID uuid.UUID
	UserID  uuid.UUID
	From    string
	To      string
	Start   float64
	Stop    float64
	Step    float64
	Origin  string
	Goal    string
}

type SimulateResult struct {
	Simulation *simulation.Simulation `json:"simulation"`
	Results    []*simulation.Result   `json:"results"`
	// Best is the first result with the lowest cost. Unreachable steps count as +Inf, so when
	// nothing reaches the goal Best is the first sample.
	Best *simulation.Result `json:"best"`
}
