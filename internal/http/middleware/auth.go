package middleware

import (
	"net/http"
	"slices"
	"strings"

	"shuttle/internal/domain"

	"github.com/gin-gonic/gin"
)

const authKey = "auth"

// TokenParser verifies a bearer token and returns the caller identity.
type TokenParser func(raw string) (domain.RequestContext, error)

// Auth requires a valid bearer token. The token may also come from the
// "token" query parameter so PDF links can be opened directly.
func Auth(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw string
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				raw = strings.TrimSpace(parts[1])
			}
		}
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			abortAuth(c, http.StatusUnauthorized, "authorization header or token query parameter required", domain.ReasonInvalidCredentials)
			return
		}

		rc, err := parse(raw)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, err.Error(), domain.ReasonOf(err))
			return
		}
		c.Set(authKey, rc)
		c.Next()
	}
}

// RequireRoles lets through callers whose role is listed.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := GetRequestContext(c)
		if !ok || !slices.Contains(roles, rc.Role) {
			abortAuth(c, http.StatusForbidden, "role not allowed for this endpoint", domain.ReasonNotEntitled)
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the identity stored by Auth.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	if c == nil {
		return domain.RequestContext{}, false
	}
	v, ok := c.Get(authKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

func abortAuth(c *gin.Context, status int, msg, reason string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       http.StatusText(status),
		"reason":     reason,
		"request_id": GetRequestID(c),
	})
}
