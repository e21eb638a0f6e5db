package aggregates

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/domain/simulation"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// DefaultMaxSweepSteps is the sample cap used when the process config does not set one.
const DefaultMaxSweepSteps = 1000

type SimulationAggregateDeps struct {
	Base        BaseDeps
	Models      repos.ModelRepo
	Versions    repos.VersionRepo
	Simulations repos.SimulationRepo
	Results     repos.SimulationResultRepo
	Paths       graph.PathFinder
	// MaxSteps caps the number of samples per sweep. Zero leaves only graph.MaxSweepLen.
	MaxSteps int
}

type simulationAggregate struct {
	deps   SimulationAggregateDeps
	reader versionReader
	log    *logger.Logger
}

func NewSimulationAggregate(deps SimulationAggregateDeps) domainagg.SimulationAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Paths == nil {
		deps.Paths = graph.NewDijkstra()
	}
	log := deps.Base.Log.With("aggregate", "SimulationAggregate")
	return &simulationAggregate{
		deps:   deps,
		reader: versionReader{models: deps.Models, versions: deps.Versions, log: log},
		log:    log,
	}
}

func (a *simulationAggregate) Contract() domainagg.Contract {
	return domainagg.SimulationAggregateContract
}

func (a *simulationAggregate) Simulate(ctx context.Context, in domainagg.SimulateInput) (domainagg.SimulateResult, error) {
	const op = "Graphs.Simulation.Simulate"
	var out domainagg.SimulateResult

	from := strings.TrimSpace(in.From)
	to := strings.TrimSpace(in.To)
	origin := strings.TrimSpace(in.Origin)
	goal := strings.TrimSpace(in.Goal)
	if in.ModelID == uuid.Nil || in.UserID == uuid.Nil {
		return out, validation(op, "model id and user id are required")
	}
	if from == "" || to == "" || origin == "" || goal == "" {
		return out, validation(op, "edge endpoints, origin and goal are required")
	}
	n, err := graph.SweepLen(in.Start, in.Stop, in.Step)
	if err != nil {
		return out, validation(op, "%s", err.Error())
	}
	if a.deps.MaxSteps > 0 && n > a.deps.MaxSteps {
		return out, validation(op, "sweep of %d samples exceeds the limit of %d", n, a.deps.MaxSteps)
	}
	weights, err := graph.SweepWeights(in.Start, in.Stop, in.Step)
	if err != nil {
		return out, validation(op, "%s", err.Error())
	}

	started := time.Now()
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.reader.model(op, dbc, in.ModelID)
		if err != nil {
			return err
		}
		v, g, err := a.reader.current(op, dbc, m)
		if err != nil {
			return err
		}
		if _, ok := g.Edge(from, to); !ok {
			return validation(op, "edge %s->%s does not exist in version %d", from, to, v.VersionNumber)
		}

		header := &types.Simulation{
			ModelID:       m.ID,
			VersionID:     v.ID,
			VersionNumber: v.VersionNumber,
			UserID:        in.UserID,
			FromNode:      from,
			ToNode:        to,
			Origin:        origin,
			Goal:          goal,
			Start:         in.Start,
			Stop:          in.Stop,
			Step:          in.Step,
		}
		if _, err := a.deps.Simulations.Create(dbc, []*types.Simulation{header}); err != nil {
			return err
		}

		rows := make([]*types.SimulationResult, 0, len(weights))
		for i, w := range weights {
			row, err := a.sample(g, from, to, origin, goal, w)
			if err != nil {
				return err
			}
			row.SimulationID = header.ID
			row.StepIndex = i
			rows = append(rows, row)
		}
		if _, err := a.deps.Results.Create(dbc, rows); err != nil {
			return err
		}

		out = domainagg.SimulateResult{
			Simulation: header,
			Results:    rows,
			Best:       simulation.Best(rows),
		}
		return nil
	})
	if err != nil {
		return domainagg.SimulateResult{}, err
	}

	fields := []any{
		"simulation_id", out.Simulation.ID,
		"model_id", in.ModelID,
		"version", out.Simulation.VersionNumber,
		"edge", from + "->" + to,
		"steps", len(out.Results),
		"elapsed_ms", time.Since(started).Milliseconds(),
	}
	if out.Best != nil {
		fields = append(fields, "best_weight", out.Best.TestedWeight.StringFixed(2), "best_reachable", out.Best.Reachable)
	}
	a.log.Info("Simulation recorded", fields...)
	return out, nil
}

// sample sets the swept edge on a private copy of g and runs one path search.
func (a *simulationAggregate) sample(g graph.Graph, from, to, origin, goal string, w float64) (*types.SimulationResult, error) {
	tested := graph.Round2(w)
	gi := g.Clone()
	gi[from][to] = tested

	t0 := time.Now()
	p, ok := a.deps.Paths.FindPath(gi, origin, goal)
	elapsed := float64(time.Since(t0).Microseconds()) / 1000.0

	row := &types.SimulationResult{
		TestedWeight: decimal.NewFromFloat(tested).Round(2),
		Reachable:    ok,
		ExecTimeMs:   elapsed,
		Path:         datatypes.JSON("[]"),
	}
	if ok {
		raw, err := json.Marshal(p.Nodes)
		if err != nil {
			return nil, InvariantError("path encoding failed: " + err.Error())
		}
		row.Path = datatypes.JSON(raw)
		row.Cost = decimal.NewNullDecimal(decimal.NewFromFloat(p.Cost).Round(4))
	}
	return row, nil
}
