package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphledger-backend/internal/http/response"
	"github.com/yungbote/graphledger-backend/internal/services"
)

type SimulationHandler struct {
	simulationService services.SimulationService
}

func NewSimulationHandler(simulationService services.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService}
}

// POST /api/models/:modelId/simulations
// body: { "from": "A", "to": "B", "start": 1, "stop": 5, "step": 0.5, "origin": "A", "goal": "D" }
func (sh *SimulationHandler) Run(c *gin.Context) {
	modelID, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	var req struct {
		From   string   `json:"from"`
		To     string   `json:"to"`
		Start  *float64 `json:"start"`
		Stop   *float64 `json:"stop"`
		Step   *float64 `json:"step"`
		Origin string   `json:"origin"`
		Goal   string   `json:"goal"`
	}
	if !bindJSON(c, &req) {
		return
	}
	switch {
	case req.Start == nil:
		badRequest(c, errMissing("start"))
		return
	case req.Stop == nil:
		badRequest(c, errMissing("stop"))
		return
	case req.Step == nil:
		badRequest(c, errMissing("step"))
		return
	}
	res, err := sh.simulationService.Run(c.Request.Context(), modelID, services.SimulationRequest{
		From:   req.From,
		To:     req.To,
		Start:  *req.Start,
		Stop:   *req.Stop,
		Step:   *req.Step,
		Origin: req.Origin,
		Goal:   req.Goal,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/models/:modelId/simulations
func (sh *SimulationHandler) ListByModel(c *gin.Context) {
	modelID, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	rows, err := sh.simulationService.ListByModel(c.Request.Context(), modelID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"simulations": rows})
}

// GET /api/simulations/:simulationId
func (sh *SimulationHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "simulationId")
	if !ok {
		return
	}
	res, err := sh.simulationService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
