// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/pkg/auth"
)

const (
	keyUserID   = "user_id"
	keyUserRole = "user_role"
	keyClaims   = "token_claims"
)

// RevocationChecker reports whether a token id was logged out
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

// Authenticator resolves the session token from the auth cookie or the
// Authorization header
type Authenticator struct {
	tokens     *auth.JWTManager
	revoked    RevocationChecker
	cookieName string
}

// NewAuthenticator creates a new authenticator. revoked may be nil.
func NewAuthenticator(tokens *auth.JWTManager, revoked RevocationChecker, cookieName string) *Authenticator {
	return &Authenticator{
		tokens:     tokens,
		revoked:    revoked,
		cookieName: cookieName,
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (*auth.Claims, bool) {
	token := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
	if token == "" {
		if cookie, err := c.Cookie(a.cookieName); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return nil, false
	}

	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	if a.revoked != nil && a.revoked.IsRevoked(c.Request.Context(), claims.ID) {
		return nil, false
	}

	c.Set(keyUserID, claims.UserID)
	c.Set(keyUserRole, user.Role(claims.Role))
	c.Set(keyClaims, claims)
	return claims, true
}

// OptionalAuth attaches the session when a valid token is present and
// continues as a guest otherwise
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.authenticate(c)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid session
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); !ok {
			abortLocalized(c, http.StatusUnauthorized, "UNAUTHORIZED", msgUnauthorized)
			return
		}
		c.Next()
	}
}

// AdminAuth requires a valid session with the admin role
func (a *Authenticator) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.authenticate(c)
		if !ok {
			abortLocalized(c, http.StatusUnauthorized, "UNAUTHORIZED", msgUnauthorized)
			return
		}
		if user.Role(claims.Role) != user.RoleAdmin {
			abortLocalized(c, http.StatusForbidden, "FORBIDDEN", msgForbidden)
			return
		}
		c.Next()
	}
}

func abortLocalized(c *gin.Context, status int, code string, msg localized) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": msg.in(Language(c)),
		"code":  code,
	})
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(keyUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// UserIDPtr returns the signed-in user id or nil for guests
func UserIDPtr(c *gin.Context) *uint {
	id, ok := GetUserIDFromContext(c)
	if !ok {
		return nil
	}
	return &id
}

// GetClaimsFromContext returns the validated token claims
func GetClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(keyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	role, exists := c.Get(keyUserRole)
	if !exists {
		return false
	}
	r, ok := role.(user.Role)
	return ok && r == user.RoleAdmin
}
