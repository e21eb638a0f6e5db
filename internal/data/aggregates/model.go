package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type ModelAggregateDeps struct {
	Base     BaseDeps
	Users    repos.UserRepo
	Models   repos.ModelRepo
	Versions repos.VersionRepo
	Ledger   domainagg.LedgerAggregate
	Paths    graph.PathFinder
}

type modelAggregate struct {
	deps   ModelAggregateDeps
	reader versionReader
	log    *logger.Logger
}

func NewModelAggregate(deps ModelAggregateDeps) domainagg.ModelAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Paths == nil {
		deps.Paths = graph.NewDijkstra()
	}
	log := deps.Base.Log.With("aggregate", "ModelAggregate")
	return &modelAggregate{
		deps:   deps,
		reader: versionReader{models: deps.Models, versions: deps.Versions, log: log},
		log:    log,
	}
}

func (a *modelAggregate) Contract() domainagg.Contract {
	return domainagg.ModelAggregateContract
}

func (a *modelAggregate) CreateModelWithVersion(ctx context.Context, in domainagg.CreateModelInput) (domainagg.CreateModelResult, error) {
	const op = "Graphs.Model.CreateModelWithVersion"
	var out domainagg.CreateModelResult

	name := strings.TrimSpace(in.Name)
	if in.OwnerID == uuid.Nil {
		return out, validation(op, "missing owner id")
	}
	if name == "" {
		return out, validation(op, "model name is required")
	}
	if err := in.Graph.Validate(); err != nil {
		return out, validation(op, "invalid graph: %v", err)
	}
	stats := graph.Measure(in.Graph)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		owner, err := a.deps.Users.LockByID(dbc, in.OwnerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return notFound(op, "user %s not found", in.OwnerID)
		}
		if owner.Tokens.LessThan(stats.Cost) {
			return domainagg.NewError(domainagg.CodeInsufficientTokens, op,
				"insufficient tokens: required "+stats.Cost.StringFixed(2)+", available "+owner.Tokens.StringFixed(2), nil)
		}

		existing, err := a.deps.Models.GetByOwnerAndName(dbc, in.OwnerID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict(op, "model %q already exists", name)
		}

		m := &types.Model{
			OwnerID:        in.OwnerID,
			Name:           name,
			Description:    strings.TrimSpace(in.Description),
			CurrentVersion: 1,
		}
		if _, err := a.deps.Models.Create(dbc, []*types.Model{m}); err != nil {
			return err
		}

		v, err := modeling.NewVersion(m.ID, 1, in.Graph, &in.OwnerID)
		if err != nil {
			return validation(op, "encode graph: %v", err)
		}
		if _, err := a.deps.Versions.Create(dbc, []*types.Version{v}); err != nil {
			return err
		}

		charge, err := a.deps.Ledger.SetAbsoluteInTx(dbc, domainagg.SetAbsoluteInput{
			UserID:      in.OwnerID,
			NewBalance:  owner.Tokens.Sub(stats.Cost),
			PerformedBy: &in.OwnerID,
			Reason:      types.ReasonModelCreate,
		})
		if err != nil {
			return err
		}

		out = domainagg.CreateModelResult{Model: m, Version: v, Charge: charge}
		return nil
	})
	if err != nil {
		return domainagg.CreateModelResult{}, err
	}

	a.log.Info("Model created",
		"model_id", out.Model.ID,
		"owner_id", in.OwnerID,
		"name", name,
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"cost", stats.Cost.StringFixed(2),
		"remaining_tokens", out.Charge.TotalRechargeTokens.StringFixed(2),
	)
	return out, nil
}

func (a *modelAggregate) ExecuteModel(ctx context.Context, in domainagg.ExecuteModelInput) (domainagg.ExecuteModelResult, error) {
	const op = "Graphs.Model.ExecuteModel"
	var out domainagg.ExecuteModelResult

	start := strings.TrimSpace(in.Start)
	goal := strings.TrimSpace(in.Goal)
	if in.ModelID == uuid.Nil || in.UserID == uuid.Nil {
		return out, validation(op, "model id and user id are required")
	}
	if start == "" || goal == "" {
		return out, validation(op, "start and goal are required")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.reader.model(op, dbc, in.ModelID)
		if err != nil {
			return err
		}
		v, g, err := a.reader.current(op, dbc, m)
		if err != nil {
			return err
		}
		if !g.HasNode(start) {
			return validation(op, "unknown start node %q", start)
		}
		if !g.HasNode(goal) {
			return validation(op, "unknown goal node %q", goal)
		}
		cost := graph.Measure(g).Cost

		u, err := a.deps.Users.LockByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return notFound(op, "user %s not found", in.UserID)
		}
		if u.Tokens.LessThan(cost) {
			return domainagg.NewError(domainagg.CodeInsufficientTokens, op,
				"insufficient tokens: required "+cost.StringFixed(2)+", available "+u.Tokens.StringFixed(2), nil)
		}

		began := time.Now()
		p, ok := a.deps.Paths.FindPath(g, start, goal)
		elapsed := time.Since(began)
		if !ok {
			return domainagg.NewError(domainagg.CodeNoPathFound, op, "no path from "+start+" to "+goal, nil)
		}

		charge, err := a.deps.Ledger.SetAbsoluteInTx(dbc, domainagg.SetAbsoluteInput{
			UserID:      in.UserID,
			NewBalance:  u.Tokens.Sub(cost),
			PerformedBy: &in.UserID,
			Reason:      types.ReasonModelExecute,
		})
		if err != nil {
			return err
		}

		out = domainagg.ExecuteModelResult{
			ModelID:       m.ID,
			VersionNumber: v.VersionNumber,
			Path:          p.Nodes,
			PathCost:      p.Cost,
			Charged:       cost,
			Remaining:     charge.TotalRechargeTokens,
			ExecTime:      elapsed,
			ExecTimeMs:    float64(elapsed.Microseconds()) / 1000,
		}
		return nil
	})
	if err != nil {
		return domainagg.ExecuteModelResult{}, err
	}

	a.log.Info("Model executed",
		"model_id", out.ModelID,
		"user_id", in.UserID,
		"version", out.VersionNumber,
		"path_len", len(out.Path),
		"charged", out.Charged.StringFixed(2),
	)
	return out, nil
}

func (a *modelAggregate) GetLatestVersion(ctx context.Context, modelID uuid.UUID) (*types.Version, error) {
	const op = "Graphs.Model.GetLatestVersion"
	if modelID == uuid.Nil {
		return nil, validation(op, "missing model id")
	}
	dbc := dbctx.Context{Ctx: ctxutil.Default(ctx)}
	m, err := a.reader.model(op, dbc, modelID)
	if err != nil {
		return nil, MapError(op, err)
	}
	v, _, err := a.reader.current(op, dbc, m)
	if err != nil {
		return nil, MapError(op, err)
	}
	return v, nil
}
