package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/activity"
)

const keySessionID = "session_id"

// SessionHeader is the canonical response header carrying the cart session id
const SessionHeader = "X-Session-Id"

const maxSessionIDLength = 100

// CartSession resolves the anonymous cart session from the configured header,
// then the session cookie. A new uuid is issued when neither is present and
// returned in the response header and cookie.
func CartSession(cfg *config.Config) gin.HandlerFunc {
	maxAge := int(cfg.Business.CartSessionTTL.Seconds())

	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(cfg.Business.CartSessionHeader))
		if id == "" {
			if cookie, err := c.Cookie(cfg.Business.CartSessionCookie); err == nil {
				id = strings.TrimSpace(cookie)
			}
		}
		if len(id) > maxSessionIDLength {
			id = ""
		}

		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Business.CartSessionCookie, id, maxAge, "/", "", cfg.JWT.CookieSecure, true)
		}

		c.Set(keySessionID, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// GetSessionID returns the cart session id resolved by CartSession
func GetSessionID(c *gin.Context) string {
	return c.GetString(keySessionID)
}

// Actor identifies the caller for activity tracking and ownership checks
func Actor(c *gin.Context) activity.Actor {
	return activity.Actor{
		UserID:    UserIDPtr(c),
		SessionID: GetSessionID(c),
	}
}
