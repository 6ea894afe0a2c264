// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookhive/api/audit"
	"github.com/bookhive/api/auth"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/service"
	"github.com/bookhive/api/util"
)

// Requirement declares what an endpoint demands of the caller. Roles are
// combined with OR (any one suffices), permissions with AND (all are
// needed). An empty axis is skipped.
type Requirement struct {
	Roles       []string
	Permissions []string
}

// RequirementTable maps endpoints to their declared requirements. Routes
// register their requirements at startup; the guard consults the table per
// request using the route template, so path parameters don't fragment keys.
type RequirementTable struct {
	mu    sync.RWMutex
	rules map[string]Requirement
}

func NewRequirementTable() *RequirementTable {
	return &RequirementTable{rules: make(map[string]Requirement)}
}

// Register declares the requirement for a method + route template pair,
// e.g. Register("GET", "/api/v1/users/:id", req).
func (t *RequirementTable) Register(method, path string, req Requirement) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules[method+" "+path] = req
}

// Lookup returns the requirement declared for the endpoint, if any.
func (t *RequirementTable) Lookup(method, path string) (Requirement, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	req, ok := t.rules[method+" "+path]
	return req, ok
}

// Guard is the per-request authorization decision point: verify the bearer
// token, load the subject, then check the endpoint's declared role and
// permission requirements. Every authentication failure produces the same
// generic 401 so callers can't probe which check failed; 403 responses name
// the axis since the caller is already authenticated.
func Guard(issuer *auth.Issuer, userService service.IUserService, table *RequirementTable, eventBus *util.EventBus) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			denyUnauthenticated(c, eventBus, "", "missing bearer token")
			return
		}

		claims, err := issuer.VerifyAccess(token)
		if err != nil {
			denyUnauthenticated(c, eventBus, "", "token verification failed")
			return
		}

		user, err := userService.GetUserByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			// A verified token for an unknown subject still reads as 401:
			// revealing that the signature was fine leaks an oracle.
			denyUnauthenticated(c, eventBus, claims.Subject, "subject not found")
			return
		}

		if req, declared := table.Lookup(c.Request.Method, c.FullPath()); declared {
			if !auth.HasAnyRole(user, req.Roles) {
				denyForbidden(c, eventBus, user.ID, "missing required role")
				return
			}
			if !auth.HasAll(user, req.Permissions) {
				denyForbidden(c, eventBus, user.ID, "missing required permission")
				return
			}
		}

		c.Set(util.ContextUserKey, user)
		c.Set(util.ContextUserIDKey, user.ID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	return token, token != ""
}

func denyUnauthenticated(c *gin.Context, eventBus *util.EventBus, userID, reason string) {
	logger.Warn("Request unauthenticated",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", reason))
	publishDenial(c, eventBus, userID, reason)
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	c.Abort()
}

func denyForbidden(c *gin.Context, eventBus *util.EventBus, userID, reason string) {
	logger.Warn("Request forbidden",
		zap.String("path", c.Request.URL.Path),
		zap.String("userID", userID),
		zap.String("reason", reason))
	publishDenial(c, eventBus, userID, reason)
	c.JSON(http.StatusForbidden, gin.H{"error": reason})
	c.Abort()
}

func publishDenial(c *gin.Context, eventBus *util.EventBus, userID, reason string) {
	if eventBus == nil {
		return
	}
	eventBus.Publish(c.Request.Context(), "auth.audit", audit.AuthEvent{
		UserID:   userID,
		Action:   audit.EventAccessDenied,
		Reason:   reason,
		Path:     c.Request.URL.Path,
		ClientIP: c.ClientIP(),
	})
}
