package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/http/response"
)

const codeInvalidRequest = "invalid_request"

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, codeInvalidRequest, err)
}

// bindJSON decodes the body or writes a 400 and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// timeQuery accepts RFC3339 timestamps or plain dates. A date used as an upper bound covers
// the whole day.
func timeQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), fmt.Errorf("invalid %s: expected RFC3339 or YYYY-MM-DD", name))
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

func intQuery(c *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), fmt.Errorf("invalid %s", name))
		return nil, false
	}
	return &n, true
}

func errMissing(field string) error {
	return fmt.Errorf("%s is required", field)
}
