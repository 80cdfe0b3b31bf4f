// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/pkg/reqctx"
)

const sessionIDKey = "session_id"

// Session resolves the browser session cookie, minting a new session id
// when none is present, and records the UI location the request came
// from so auth failures can restore it after re-login.
func Session(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(
				cfg.Session.CookieName,
				sessionID,
				int(cfg.Session.TTL.Seconds()),
				"/",
				"",
				cfg.IsProduction(),
				true,
			)
		}
		c.Set(sessionIDKey, sessionID)

		if location := c.GetHeader("X-Client-Location"); location != "" {
			c.Request = c.Request.WithContext(
				reqctx.WithClientLocation(c.Request.Context(), location),
			)
		}

		c.Next()
	}
}

// GetSessionID returns the session id resolved by the Session middleware
func GetSessionID(c *gin.Context) string {
	if v, ok := c.Get(sessionIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
