package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	sessionHeader = "X-Session-Id"

	ctxSessionID = "sessionID"
	ctxUserID    = "userID"
)

// sessionRequired validates the session header and stores the session id in
// the request context.
func (h *handlers) sessionRequired(c *gin.Context) {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + sessionHeader + " header"})
		return
	}
	if _, ok := h.deps.Sessions.Validate(id); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown or expired session"})
		return
	}
	c.Set(ctxSessionID, id)
	c.Next()
}

// authRequired validates the bearer token and stores the user id in the
// request context.
func (h *handlers) authRequired(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
		return
	}
	c.Set(ctxUserID, userID)
	c.Next()
}

func (h *handlers) bearerUserID(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	userID, err := h.deps.Verifier.UserID(strings.TrimPrefix(auth, prefix))
	if err != nil {
		return "", false
	}
	return userID, true
}
