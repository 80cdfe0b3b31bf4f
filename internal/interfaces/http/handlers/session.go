// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

// SessionHandler handles session credential endpoints
type SessionHandler struct {
	registry *Registry
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// AttachTokenRequest is the payload for POST /session/token
type AttachTokenRequest struct {
	Token string `json:"token"`
}

// AttachToken handles POST /session/token. The UI hands over the bearer
// token obtained from the login flow; the token may also arrive in the
// Authorization header.
func (h *SessionHandler) AttachToken(c *gin.Context) {
	b := h.registry.Bundle(middleware.GetSessionID(c))

	var req AttachTokenRequest
	_ = c.ShouldBindJSON(&req)

	token := req.Token
	if token == "" {
		header, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A token is required, in the body or the Authorization header",
			})
			return
		}
		token = header
	}

	if err := b.Guard.SetCredentials(c.Request.Context(), token); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session credentials attached",
	})
}

// GetRedirect handles GET /session/redirect. Returns the pending
// re-authentication redirect, if an auth failure invalidated the
// session since the last successful login.
func (h *SessionHandler) GetRedirect(c *gin.Context) {
	b := h.registry.Bundle(middleware.GetSessionID(c))

	redirect := b.Guard.PendingRedirect()
	if redirect == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Session is healthy",
			"data":    gin.H{"redirect": nil},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Re-authentication required",
		"data":    gin.H{"redirect": redirect},
	})
}
