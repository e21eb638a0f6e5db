package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	"github.com/yungbote/graphledger-backend/internal/http/response"
	"github.com/yungbote/graphledger-backend/internal/services"
)

type ModerationHandler struct {
	moderationService services.ModerationService
}

func NewModerationHandler(moderationService services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// POST /api/models/:modelId/weight-changes
// body: { "from": "A", "to": "B", "weight": 3.5 }
func (mh *ModerationHandler) Create(c *gin.Context) {
	modelID, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	var req struct {
		From   string   `json:"from"`
		To     string   `json:"to"`
		Weight *float64 `json:"weight"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Weight == nil {
		badRequest(c, errMissing("weight"))
		return
	}
	row, err := mh.moderationService.CreateRequest(c.Request.Context(), modelID, services.WeightChangeProposal{
		From:   req.From,
		To:     req.To,
		Weight: *req.Weight,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// GET /api/models/:modelId/weight-changes?status=&from=&to=
func (mh *ModerationHandler) List(c *gin.Context) {
	modelID, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	f := repos.RequestFilter{Status: c.Query("status")}
	if f.FromDate, ok = timeQuery(c, "from", false); !ok {
		return
	}
	if f.ToDate, ok = timeQuery(c, "to", true); !ok {
		return
	}
	out, err := mh.moderationService.ListRequests(c.Request.Context(), modelID, f)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/models/:modelId/weight-changes/:requestId/approve
func (mh *ModerationHandler) Approve(c *gin.Context) {
	modelID, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}
	res, err := mh.moderationService.Approve(c.Request.Context(), modelID, requestID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/models/:modelId/weight-changes/:requestId/reject
// body (optional): { "reason": "..." }
func (mh *ModerationHandler) Reject(c *gin.Context) {
	modelID, ok := uuidParam(c, "modelId")
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	res, err := mh.moderationService.Reject(c.Request.Context(), modelID, requestID, req.Reason)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
