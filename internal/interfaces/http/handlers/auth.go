// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
	config      *config.Config
	log         *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *user.Service, cfg *config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		config:      cfg,
		log:         log,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.userService.Register(c.Request.Context(), &req, middleware.GetSessionID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setAuthCookie(c, resp.Token, resp.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    resp,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req, middleware.GetSessionID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setAuthCookie(c, resp.Token, resp.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    resp,
	})
}

// Logout handles POST /auth/logout. It succeeds without a session too.
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.GetClaimsFromContext(c); ok {
		if err := h.userService.Logout(c.Request.Context(), claims); err != nil {
			h.log.WithError(err).WithField("user_id", claims.UserID).Warn("failed to revoke token")
		}
	}

	h.setAuthCookie(c, "", time.Time{})
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	u, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    u,
	})
}

// setAuthCookie writes the HttpOnly session cookie; an empty token clears it
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := -1
	if token != "" {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.JWT.CookieName, token, maxAge, "/", "", h.config.JWT.CookieSecure, true)
}
