// Package middleware provides HTTP middleware for the identity service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stackmesa/identity-service/internal/models"
	"github.com/stackmesa/identity-service/internal/repository"
	"github.com/stackmesa/identity-service/internal/service"
)

// Context keys for the authenticated user.
const (
	ctxUserKey   = "auth.user"
	ctxUserIDKey = "auth.user_id"
)

// RequireAuth validates the access token (auth cookie or bearer header) and
// re-loads the user from the store on every request. A valid token for a
// deactivated or deleted account is rejected, so admin deactivation takes
// effect on the target's next request rather than at token expiry.
func RequireAuth(jwtService service.JWTService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
			return
		}

		WithUser(c, user)
		c.Next()
	}
}

// WithUser stores the authenticated user on the request context for
// CurrentUser and CurrentUserID.
func WithUser(c *gin.Context, user *models.User) {
	c.Set(ctxUserKey, user)
	c.Set(ctxUserIDKey, user.ID)
}

// RequireRole authorizes the current user against the named role with a
// fresh membership query on every request. Membership is never cached, so
// a revocation applies from the next request on.
func RequireRole(rbacService service.RBACService, roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ok, err := rbacService.Authorize(c.Request.Context(), userID, roleName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID returns the authenticated user's ID, or "".
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
