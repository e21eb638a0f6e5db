package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/http/response"
	"github.com/yungbote/graphledger-backend/internal/services"
)

type ModelHandler struct {
	modelService services.ModelService
}

func NewModelHandler(modelService services.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// POST /api/models
// body: { "name": "...", "description": "...", "graph": { "A": { "B": 1.5 } } }
func (mh *ModelHandler) Create(c *gin.Context) {
	var req struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Graph       graph.Graph `json:"graph"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := mh.modelService.CreateModel(c.Request.Context(), services.CreateModelRequest{
		Name:        req.Name,
		Description: req.Description,
		Graph:       req.Graph,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/models/:modelId
func (mh *ModelHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	view, err := mh.modelService.GetModel(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/models/:modelId/execute
// body: { "start": "A", "goal": "D" }
func (mh *ModelHandler) Execute(c *gin.Context) {
	id, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	var req struct {
		Start string `json:"start"`
		Goal  string `json:"goal"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := mh.modelService.ExecuteModel(c.Request.Context(), id, req.Start, req.Goal)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/models/:modelId/versions?from=&to=&node_count=&edge_count=
func (mh *ModelHandler) ListVersions(c *gin.Context) {
	id, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	var f repos.VersionFilter
	if f.FromDate, ok = timeQuery(c, "from", false); !ok {
		return
	}
	if f.ToDate, ok = timeQuery(c, "to", true); !ok {
		return
	}
	if f.NodeCount, ok = intQuery(c, "node_count"); !ok {
		return
	}
	if f.EdgeCount, ok = intQuery(c, "edge_count"); !ok {
		return
	}
	rows, err := mh.modelService.ListVersions(c.Request.Context(), id, f)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": rows})
}

// GET /api/models/:modelId/versions/:versionNumber
func (mh *ModelHandler) GetVersion(c *gin.Context) {
	id, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("versionNumber"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid versionNumber"))
		return
	}
	v, err := mh.modelService.GetVersion(c.Request.Context(), id, number)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, v)
}
