package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
)

// StatusFor maps an error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation, domainagg.CodeNoPathFound:
		return http.StatusBadRequest
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainagg.CodeInsufficientTokens:
		return http.StatusPaymentRequired
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeInvalidAmount:
		return http.StatusUnprocessableEntity
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError renders err with the status of its code. Server-side failures keep
// their detail out of the body; the cause is attached to the gin context for the request log.
func RespondDomainError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	status := StatusFor(code)
	_ = c.Error(err)

	msg := "internal server error"
	if status < http.StatusInternalServerError {
		var de *domainagg.Error
		if errors.As(err, &de) && de.Message != "" {
			msg = de.Message
		} else {
			msg = err.Error()
		}
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: string(code)},
	})
}
