package handlers

import (
	"net/http"

	"shuttle/internal/domain"
	"shuttle/internal/http/middleware"
	"shuttle/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error payload shared by every endpoint.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, reason, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Reason:    reason,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. System errors
// are logged and reported without their cause.
func RespondDomainError(c *gin.Context, err error) {
	reason := domain.ReasonOf(err)
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", reason, err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", reason, err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", reason, err.Error(), nil)
	case domain.IsAuthorization(err):
		status := http.StatusForbidden
		if reason == domain.ReasonInvalidCredentials {
			status = http.StatusUnauthorized
		}
		respondError(c, status, "forbidden", reason, err.Error(), nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", "internal_error", err)
		if reason == "" {
			reason = domain.ReasonStorage
		}
		respondError(c, http.StatusInternalServerError, "internal_error", reason, "internal error, retry later", nil)
	}
}
