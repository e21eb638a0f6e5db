package aggregates

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// DefaultAlpha is the smoothing factor used when none is configured.
const DefaultAlpha = 0.9

const (
	tableModels         = "models"
	tableWeightRequests = "weight_change_requests"
)

type ModerationAggregateDeps struct {
	Base     BaseDeps
	Models   repos.ModelRepo
	Versions repos.VersionRepo
	Requests repos.WeightChangeRequestRepo
	// Alpha must lie in (0,1); anything else falls back to DefaultAlpha.
	Alpha float64
}

type moderationAggregate struct {
	deps   ModerationAggregateDeps
	reader versionReader
	log    *logger.Logger
}

func NewModerationAggregate(deps ModerationAggregateDeps) domainagg.ModerationAggregate {
	deps.Base = deps.Base.withDefaults()
	if !(deps.Alpha > 0 && deps.Alpha < 1) {
		deps.Alpha = DefaultAlpha
	}
	log := deps.Base.Log.With("aggregate", "ModerationAggregate")
	return &moderationAggregate{
		deps:   deps,
		reader: versionReader{models: deps.Models, versions: deps.Versions, log: log},
		log:    log,
	}
}

func (a *moderationAggregate) Contract() domainagg.Contract {
	return domainagg.ModerationAggregateContract
}

func (a *moderationAggregate) CreateRequest(ctx context.Context, in domainagg.CreateWeightChangeInput) (*types.WeightChangeRequest, error) {
	const op = "Graphs.Moderation.CreateRequest"

	from := strings.TrimSpace(in.From)
	to := strings.TrimSpace(in.To)
	if in.ModelID == uuid.Nil || in.RequesterID == uuid.Nil {
		return nil, validation(op, "model id and requester id are required")
	}
	if from == "" || to == "" {
		return nil, validation(op, "edge endpoints are required")
	}
	if math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return nil, validation(op, "weight must be a finite number")
	}
	weight := decimal.NewFromFloat(in.Weight).Round(2)
	if !weight.IsPositive() {
		return nil, validation(op, "weight must be greater than zero")
	}

	var out *types.WeightChangeRequest
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.reader.model(op, dbc, in.ModelID)
		if err != nil {
			return err
		}
		_, g, err := a.reader.current(op, dbc, m)
		if err != nil {
			return err
		}
		if _, ok := g.Edge(from, to); !ok {
			return validation(op, "edge %s->%s does not exist in the current version", from, to)
		}

		row := &types.WeightChangeRequest{
			ModelID:        m.ID,
			RequesterID:    in.RequesterID,
			FromNode:       from,
			ToNode:         to,
			ProposedWeight: weight,
			Status:         types.WeightChangePending,
		}
		if _, err := a.deps.Requests.Create(dbc, []*types.WeightChangeRequest{row}); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("Weight change requested",
		"request_id", out.ID,
		"model_id", out.ModelID,
		"requester_id", out.RequesterID,
		"edge", from+"->"+to,
		"weight", weight.StringFixed(2),
	)
	return out, nil
}

// loadPending reads the request and checks it belongs to the model and is still pending.
func (a *moderationAggregate) loadPending(op string, dbc dbctx.Context, modelID, requestID uuid.UUID) (*types.WeightChangeRequest, error) {
	req, err := a.deps.Requests.GetByID(dbc, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.ModelID != modelID {
		return nil, notFound(op, "weight change request %s not found for model %s", requestID, modelID)
	}
	if err := RequireStatusAllowed(req.Status, types.WeightChangePending); err != nil {
		return nil, conflict(op, "weight change request %s is already %s", requestID, req.Status)
	}
	return req, nil
}

func (a *moderationAggregate) Approve(ctx context.Context, in domainagg.ApproveWeightChangeInput) (domainagg.ApproveWeightChangeResult, error) {
	const op = "Graphs.Moderation.Approve"
	var out domainagg.ApproveWeightChangeResult

	if in.ModelID == uuid.Nil || in.RequestID == uuid.Nil || in.ApproverID == uuid.Nil {
		return out, validation(op, "model id, request id and approver id are required")
	}
	alpha := a.deps.Alpha

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.reader.model(op, dbc, in.ModelID)
		if err != nil {
			return err
		}
		v, g, err := a.reader.current(op, dbc, m)
		if err != nil {
			return err
		}
		req, err := a.loadPending(op, dbc, m.ID, in.RequestID)
		if err != nil {
			return err
		}

		prevW, ok := g.Edge(req.FromNode, req.ToNode)
		if !ok {
			return InvariantError("edge " + req.FromNode + "->" + req.ToNode + " missing from current version")
		}
		prev := decimal.NewFromFloat(prevW).Round(2)
		next := graph.Blend(prev, req.ProposedWeight, alpha)

		// No row lock: a competing decision loses one of the conditional updates below.
		nextNumber := v.VersionNumber + 1
		now := time.Now().UTC()
		moved, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, tableModels, m.ID, "current_version", m.CurrentVersion, map[string]any{
			"current_version": nextNumber,
			"updated_at":      now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(moved, "model current_version moved concurrently"); err != nil {
			return err
		}

		nv, err := modeling.NewVersion(m.ID, nextNumber, g.WithEdge(req.FromNode, req.ToNode, next.InexactFloat64()), &in.ApproverID)
		if err != nil {
			return err
		}
		nv.AlphaUsed = &alpha
		if _, err := a.deps.Versions.Create(dbc, []*types.Version{nv}); err != nil {
			return err
		}

		decided, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, tableWeightRequests, req.ID, []string{types.WeightChangePending}, map[string]any{
			"status":          types.WeightChangeApproved,
			"reviewer_id":     in.ApproverID,
			"previous_weight": prev,
			"applied_weight":  next,
			"alpha_used":      alpha,
			"applied_version": nextNumber,
			"decided_at":      now,
			"updated_at":      now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(decided, "weight change request was decided concurrently"); err != nil {
			return err
		}

		out = domainagg.ApproveWeightChangeResult{
			RequestID:      req.ID,
			From:           req.FromNode,
			To:             req.ToNode,
			PreviousWeight: prev,
			NewWeight:      next,
			AlphaUsed:      alpha,
			VersionNumber:  nextNumber,
			DecidedAt:      now,
		}
		return nil
	})
	if err != nil {
		return domainagg.ApproveWeightChangeResult{}, err
	}

	a.log.Info("Weight change approved",
		"request_id", out.RequestID,
		"model_id", in.ModelID,
		"approver_id", in.ApproverID,
		"edge", out.From+"->"+out.To,
		"previous", out.PreviousWeight.StringFixed(2),
		"next", out.NewWeight.StringFixed(2),
		"alpha", out.AlphaUsed,
		"version", out.VersionNumber,
	)
	return out, nil
}

func (a *moderationAggregate) Reject(ctx context.Context, in domainagg.RejectWeightChangeInput) (domainagg.RejectWeightChangeResult, error) {
	const op = "Graphs.Moderation.Reject"
	var out domainagg.RejectWeightChangeResult

	if in.ModelID == uuid.Nil || in.RequestID == uuid.Nil || in.ApproverID == uuid.Nil {
		return out, validation(op, "model id, request id and approver id are required")
	}
	reason := strings.TrimSpace(in.Reason)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		m, err := a.reader.model(op, dbc, in.ModelID)
		if err != nil {
			return err
		}
		req, err := a.loadPending(op, dbc, m.ID, in.RequestID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":      types.WeightChangeRejected,
			"reviewer_id": in.ApproverID,
			"decided_at":  now,
			"updated_at":  now,
		}
		if reason != "" {
			updates["rejection_reason"] = reason
		}
		decided, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, tableWeightRequests, req.ID, []string{types.WeightChangePending}, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(decided, "weight change request was decided concurrently"); err != nil {
			return err
		}

		out = domainagg.RejectWeightChangeResult{
			RequestID: req.ID,
			Status:    types.WeightChangeRejected,
			Reason:    reason,
			DecidedAt: now,
		}
		return nil
	})
	if err != nil {
		return domainagg.RejectWeightChangeResult{}, err
	}

	a.log.Info("Weight change rejected",
		"request_id", out.RequestID,
		"model_id", in.ModelID,
		"approver_id", in.ApproverID,
		"reason", reason,
	)
	return out, nil
}
