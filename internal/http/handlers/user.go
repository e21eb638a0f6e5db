package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphledger-backend/internal/http/response"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/users/me/transactions?limit=&offset=
func (uh *UserHandler) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page, err := uh.userService.ListTransactions(dbctx.Context{Ctx: c.Request.Context()}, limit, offset)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// POST /api/users/recharge
// body: { "email": "...", "amount": 10.5, "reason": "..." }
func (uh *UserHandler) Recharge(c *gin.Context) {
	var req struct {
		Email  string   `json:"email"`
		Amount *float64 `json:"amount"`
		Reason string   `json:"reason"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount == nil {
		badRequest(c, errMissing("amount"))
		return
	}
	change, err := uh.userService.AdminRecharge(c.Request.Context(), services.AdminRechargeInput{
		Email:  req.Email,
		Amount: *req.Amount,
		Reason: req.Reason,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, change)
}
