package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"libroteca/internal/entities"
	"libroteca/internal/store"
)

const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyRole   = "auth_role"
)

// Middleware verifies Bearer tokens against signature, expiry and the
// revocation blacklist.
type Middleware struct {
	secret    []byte
	blacklist store.AuthStore
}

// NewMiddleware creates the token-verification middleware.
func NewMiddleware(secret []byte, blacklist store.AuthStore) *Middleware {
	return &Middleware{secret: secret, blacklist: blacklist}
}

// RequireAuth rejects requests without a valid, non-blacklisted Bearer
// token and stores the caller's identity in the context.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "token required")
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" || token == "" {
			abortUnauthorized(c, "invalid token format")
			return
		}

		// Blacklist first: a revoked token is rejected regardless of
		// its remaining signed validity window.
		revoked, err := m.blacklist.IsBlacklisted(token)
		if err != nil {
			log.Printf("Blacklist lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status": "error",
				"code":   http.StatusInternalServerError,
				"error":  []gin.H{{"message": "could not verify token"}},
			})
			return
		}
		if revoked {
			abortUnauthorized(c, "token has been revoked")
			return
		}

		claims, err := ParseToken(m.secret, token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates a route to admin callers. Must run after RequireAuth.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != entities.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status": "error",
				"code":   http.StatusForbidden,
				"error":  []gin.H{{"message": "admin access required"}},
			})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's id, or 0 when the route
// is unauthenticated.
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// GetRole returns the authenticated caller's role.
func GetRole(c *gin.Context) entities.UserRole {
	if v, ok := c.Get(ContextKeyRole); ok {
		if role, ok := v.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status": "error",
		"code":   http.StatusUnauthorized,
		"error":  []gin.H{{"message": message}},
	})
}
