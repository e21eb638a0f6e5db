package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/domain/simulation"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

const defaultSimulationList = 50

type SimulationRequest struct {
	From   string
	To     string
	Start  float64
	Stop   float64
	Step   float64
	Origin string
	Goal   string
}

type SimulationService interface {
	Run(ctx context.Context, modelID uuid.UUID, in SimulationRequest) (domainagg.SimulateResult, error)
	Get(ctx context.Context, simulationID uuid.UUID) (domainagg.SimulateResult, error)
	ListByModel(ctx context.Context, modelID uuid.UUID) ([]*types.Simulation, error)
}

type simulationService struct {
	log         *logger.Logger
	sims        domainagg.SimulationAggregate
	simulations repos.SimulationRepo
	results     repos.SimulationResultRepo
	modelRepo   repos.ModelRepo
	metrics     *observability.Metrics
}

func NewSimulationService(
	log *logger.Logger,
	agg domainagg.SimulationAggregate,
	simulations repos.SimulationRepo,
	results repos.SimulationResultRepo,
	modelRepo repos.ModelRepo,
	metrics *observability.Metrics,
) SimulationService {
	return &simulationService{
		log:         log.With("service", "SimulationService"),
		sims:        agg,
		simulations: simulations,
		results:     results,
		modelRepo:   modelRepo,
		metrics:     metrics,
	}
}

func (s *simulationService) Run(ctx context.Context, modelID uuid.UUID, in SimulationRequest) (domainagg.SimulateResult, error) {
	const op = "Simulations.Run"
	rd, err := caller(ctx, op)
	if err != nil {
		return domainagg.SimulateResult{}, err
	}
	res, err := s.sims.Simulate(ctx, domainagg.SimulateInput{
		ModelID: modelID,
		UserID:  rd.UserID,
		From:    in.From,
		To:      in.To,
		Start:   in.Start,
		Stop:    in.Stop,
		Step:    in.Step,
		Origin:  in.Origin,
		Goal:    in.Goal,
	})
	if err != nil {
		return domainagg.SimulateResult{}, err
	}
	s.metrics.ObserveSimulation(len(res.Results))
	return res, nil
}

// Get reloads a stored sweep and recomputes its best sample.
func (s *simulationService) Get(ctx context.Context, simulationID uuid.UUID) (domainagg.SimulateResult, error) {
	const op = "Simulations.Get"
	dbc := dbctx.Context{Ctx: ctx}
	header, err := s.simulations.GetByID(dbc, simulationID)
	if err != nil {
		return domainagg.SimulateResult{}, aggregates.MapError(op, err)
	}
	if header == nil {
		return domainagg.SimulateResult{}, domainagg.NewError(domainagg.CodeNotFound, op, "simulation not found", nil)
	}
	rows, err := s.results.ListBySimulation(dbc, header.ID)
	if err != nil {
		return domainagg.SimulateResult{}, aggregates.MapError(op, err)
	}
	return domainagg.SimulateResult{
		Simulation: header,
		Results:    rows,
		Best:       simulation.Best(rows),
	}, nil
}

func (s *simulationService) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*types.Simulation, error) {
	const op = "Simulations.ListByModel"
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.modelRepo.GetByID(dbc, modelID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if m == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "model not found", nil)
	}
	rows, err := s.simulations.ListByModel(dbc, modelID, defaultSimulationList)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}
