package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/cache"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type CreateModelRequest struct {
	Name        string
	Description string
	Graph       graph.Graph
}

// ModelView is a model together with the version its pointer names.
type ModelView struct {
	Model         *types.Model   `json:"model"`
	LatestVersion *types.Version `json:"latest_version"`
}

type ModelService interface {
	CreateModel(ctx context.Context, in CreateModelRequest) (domainagg.CreateModelResult, error)
	ExecuteModel(ctx context.Context, modelID uuid.UUID, start, goal string) (domainagg.ExecuteModelResult, error)
	GetModel(ctx context.Context, modelID uuid.UUID) (ModelView, error)
	ListVersions(ctx context.Context, modelID uuid.UUID, f repos.VersionFilter) ([]*types.Version, error)
	GetVersion(ctx context.Context, modelID uuid.UUID, number int) (*types.Version, error)
}

type modelService struct {
	log       *logger.Logger
	models    domainagg.ModelAggregate
	modelRepo repos.ModelRepo
	versions  repos.VersionRepo
	cache     *cache.VersionCache
	metrics   *observability.Metrics
}

func NewModelService(
	log *logger.Logger,
	models domainagg.ModelAggregate,
	modelRepo repos.ModelRepo,
	versions repos.VersionRepo,
	versionCache *cache.VersionCache,
	metrics *observability.Metrics,
) ModelService {
	if versionCache == nil {
		versionCache = cache.NewVersionCache(nil, 0, log, metrics)
	}
	return &modelService{
		log:       log.With("service", "ModelService"),
		models:    models,
		modelRepo: modelRepo,
		versions:  versions,
		cache:     versionCache,
		metrics:   metrics,
	}
}

func (ms *modelService) CreateModel(ctx context.Context, in CreateModelRequest) (domainagg.CreateModelResult, error) {
	const op = "Models.Create"
	rd, err := caller(ctx, op)
	if err != nil {
		return domainagg.CreateModelResult{}, err
	}
	res, err := ms.models.CreateModelWithVersion(ctx, domainagg.CreateModelInput{
		OwnerID:     rd.UserID,
		Name:        in.Name,
		Description: in.Description,
		Graph:       in.Graph,
	})
	if err != nil {
		return domainagg.CreateModelResult{}, err
	}
	ms.metrics.ObserveTokens(res.Charge.Reason, res.Charge.RechargeTokens.InexactFloat64())
	return res, nil
}

func (ms *modelService) ExecuteModel(ctx context.Context, modelID uuid.UUID, start, goal string) (domainagg.ExecuteModelResult, error) {
	const op = "Models.Execute"
	rd, err := caller(ctx, op)
	if err != nil {
		return domainagg.ExecuteModelResult{}, err
	}
	res, err := ms.models.ExecuteModel(ctx, domainagg.ExecuteModelInput{
		ModelID: modelID,
		UserID:  rd.UserID,
		Start:   strings.TrimSpace(start),
		Goal:    strings.TrimSpace(goal),
	})
	if err != nil {
		return domainagg.ExecuteModelResult{}, err
	}
	ms.metrics.ObserveTokens(types.ReasonModelExecute, res.Charged.Neg().InexactFloat64())
	return res, nil
}

func (ms *modelService) GetModel(ctx context.Context, modelID uuid.UUID) (ModelView, error) {
	const op = "Models.Get"
	m, err := ms.requireModel(ctx, op, modelID)
	if err != nil {
		return ModelView{}, err
	}
	v, err := ms.models.GetLatestVersion(ctx, m.ID)
	if err != nil {
		return ModelView{}, err
	}
	return ModelView{Model: m, LatestVersion: v}, nil
}

func (ms *modelService) ListVersions(ctx context.Context, modelID uuid.UUID, f repos.VersionFilter) ([]*types.Version, error) {
	const op = "Models.ListVersions"
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "to date is before from date", nil)
	}
	if _, err := ms.requireModel(ctx, op, modelID); err != nil {
		return nil, err
	}
	rows, err := ms.versions.List(dbctx.Context{Ctx: ctx}, modelID, f)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return rows, nil
}

func (ms *modelService) GetVersion(ctx context.Context, modelID uuid.UUID, number int) (*types.Version, error) {
	const op = "Models.GetVersion"
	if number <= 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "version number must be positive", nil)
	}
	v, err := ms.cache.Get(ctx, modelID, number, func(ctx context.Context) (*types.Version, error) {
		return ms.versions.GetByModelAndNumber(dbctx.Context{Ctx: ctx}, modelID, number)
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if v == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "version not found", nil)
	}
	return v, nil
}

func (ms *modelService) requireModel(ctx context.Context, op string, modelID uuid.UUID) (*types.Model, error) {
	m, err := ms.modelRepo.GetByID(dbctx.Context{Ctx: ctx}, modelID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if m == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "model not found", nil)
	}
	return m, nil
}
