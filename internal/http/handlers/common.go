package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"shuttle/internal/domain"
	"shuttle/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", domain.ReasonInvalidInput, "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", domain.ReasonInvalidInput, "invalid payload", err.Error())
		return false
	}
	return true
}

// paramID parses a positive integer path parameter, answering 400 when it
// is not one.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", domain.ReasonInvalidInput, name+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// riderScope resolves which rider a request acts for. Riders act only for
// themselves; staff roles act for the requested rider.
func riderScope(c *gin.Context, requested int64) (int64, bool) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok || rc.Role != domain.RoleRider {
		return requested, true
	}
	if requested != 0 && requested != rc.UserID {
		RespondDomainError(c, domain.AuthorizationError{Msg: "riders may only act for themselves", Reason: domain.ReasonNotOwner})
		return 0, false
	}
	return rc.UserID, true
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}
