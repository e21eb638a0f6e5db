package aggregates

import (
	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// versionReader resolves a model's authoritative version inside the caller's transaction.
type versionReader struct {
	models   repos.ModelRepo
	versions repos.VersionRepo
	log      *logger.Logger
}

func (r versionReader) model(op string, dbc dbctx.Context, modelID uuid.UUID) (*types.Model, error) {
	m, err := r.models.GetByID(dbc, modelID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFound(op, "model %s not found", modelID)
	}
	return m, nil
}

// current returns the version named by m.CurrentVersion. If that row is missing the pointer
// and the table disagree, so it falls back to the highest version number and logs it.
func (r versionReader) current(op string, dbc dbctx.Context, m *types.Model) (*types.Version, graph.Graph, error) {
	v, err := r.versions.GetByModelAndNumber(dbc, m.ID, m.CurrentVersion)
	if err != nil {
		return nil, nil, err
	}
	if v == nil {
		r.log.Warn("Current version pointer has no matching row, falling back to max version",
			"model_id", m.ID,
			"current_version", m.CurrentVersion,
		)
		v, err = r.versions.GetLatestByModel(dbc, m.ID)
		if err != nil {
			return nil, nil, err
		}
		if v == nil {
			return nil, nil, notFound(op, "model %s has no versions", m.ID)
		}
	}
	g, err := v.DecodeGraph()
	if err != nil {
		return nil, nil, InvariantError("stored graph is unreadable: " + err.Error())
	}
	return v, g, nil
}
