package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/domain/moderation"
	"github.com/yungbote/graphledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type WeightChangeProposal struct {
	From   string
	To     string
	Weight float64
}

type RequestList struct {
	Items   []*types.WeightChangeRequest `json:"items"`
	Pending int64                        `json:"pending"`
}

type ModerationService interface {
	CreateRequest(ctx context.Context, modelID uuid.UUID, in WeightChangeProposal) (*types.WeightChangeRequest, error)
	ListRequests(ctx context.Context, modelID uuid.UUID, f repos.RequestFilter) (RequestList, error)
	Approve(ctx context.Context, modelID, requestID uuid.UUID) (domainagg.ApproveWeightChangeResult, error)
	Reject(ctx context.Context, modelID, requestID uuid.UUID, reason string) (domainagg.RejectWeightChangeResult, error)
}

type moderationService struct {
	log        *logger.Logger
	moderation domainagg.ModerationAggregate
	modelRepo  repos.ModelRepo
	requests   repos.WeightChangeRequestRepo
}

func NewModerationService(
	log *logger.Logger,
	agg domainagg.ModerationAggregate,
	modelRepo repos.ModelRepo,
	requests repos.WeightChangeRequestRepo,
) ModerationService {
	return &moderationService{
		log:        log.With("service", "ModerationService"),
		moderation: agg,
		modelRepo:  modelRepo,
		requests:   requests,
	}
}

func (s *moderationService) CreateRequest(ctx context.Context, modelID uuid.UUID, in WeightChangeProposal) (*types.WeightChangeRequest, error) {
	const op = "Moderation.CreateRequest"
	rd, err := caller(ctx, op)
	if err != nil {
		return nil, err
	}
	return s.moderation.CreateRequest(ctx, domainagg.CreateWeightChangeInput{
		ModelID:     modelID,
		RequesterID: rd.UserID,
		From:        in.From,
		To:          in.To,
		Weight:      in.Weight,
	})
}

func (s *moderationService) ListRequests(ctx context.Context, modelID uuid.UUID, f repos.RequestFilter) (RequestList, error) {
	const op = "Moderation.ListRequests"
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status != "" && !moderation.ValidStatus(f.Status) {
		return RequestList{}, domainagg.NewError(domainagg.CodeValidation, op, "unknown status "+f.Status, nil)
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return RequestList{}, domainagg.NewError(domainagg.CodeValidation, op, "to date is before from date", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.loadModel(dbc, op, modelID); err != nil {
		return RequestList{}, err
	}
	rows, err := s.requests.List(dbc, modelID, f)
	if err != nil {
		return RequestList{}, aggregates.MapError(op, err)
	}
	pending, err := s.requests.CountByStatus(dbc, modelID, types.WeightChangePending)
	if err != nil {
		return RequestList{}, aggregates.MapError(op, err)
	}
	return RequestList{Items: rows, Pending: pending}, nil
}

func (s *moderationService) Approve(ctx context.Context, modelID, requestID uuid.UUID) (domainagg.ApproveWeightChangeResult, error) {
	const op = "Moderation.Approve"
	rd, err := s.authorizeReviewer(ctx, op, modelID)
	if err != nil {
		return domainagg.ApproveWeightChangeResult{}, err
	}
	return s.moderation.Approve(ctx, domainagg.ApproveWeightChangeInput{
		ModelID:    modelID,
		RequestID:  requestID,
		ApproverID: rd.UserID,
	})
}

func (s *moderationService) Reject(ctx context.Context, modelID, requestID uuid.UUID, reason string) (domainagg.RejectWeightChangeResult, error) {
	const op = "Moderation.Reject"
	rd, err := s.authorizeReviewer(ctx, op, modelID)
	if err != nil {
		return domainagg.RejectWeightChangeResult{}, err
	}
	return s.moderation.Reject(ctx, domainagg.RejectWeightChangeInput{
		ModelID:    modelID,
		RequestID:  requestID,
		ApproverID: rd.UserID,
		Reason:     reason,
	})
}

// authorizeReviewer allows the model owner and admins to decide requests.
func (s *moderationService) authorizeReviewer(ctx context.Context, op string, modelID uuid.UUID) (*ctxutil.RequestData, error) {
	rd, err := caller(ctx, op)
	if err != nil {
		return nil, err
	}
	m, err := s.loadModel(dbctx.Context{Ctx: ctx}, op, modelID)
	if err != nil {
		return nil, err
	}
	if rd.Role != types.RoleAdmin && m.OwnerID != rd.UserID {
		s.log.Warn("Reviewer rejected", "model_id", modelID, "user_id", rd.UserID)
		return nil, domainagg.NewError(domainagg.CodeForbidden, op, "only the model owner or an admin can decide requests", nil)
	}
	return rd, nil
}

func (s *moderationService) loadModel(dbc dbctx.Context, op string, modelID uuid.UUID) (*types.Model, error) {
	m, err := s.modelRepo.GetByID(dbc, modelID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if m == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "model not found", nil)
	}
	return m, nil
}
