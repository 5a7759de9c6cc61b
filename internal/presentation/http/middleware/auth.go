package middleware

import (
	"net/http"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// AuthCookie holds the admin token for browser sessions.
const AuthCookie = "admin_auth"

const adminClaimsKey = "adminClaims"

// TokenValidator checks an admin token.
type TokenValidator interface {
	ValidateToken(token string) (*security.AdminClaims, error)
}

// ExtractToken reads a bearer token first and falls back to the cookie.
func ExtractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(header[len("Bearer "):]); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

// AdminAuth rejects requests without a valid admin token.
func AdminAuth(validator TokenValidator, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Auth().Debug("Rejected admin token", "path", c.Request.URL.Path, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(adminClaimsKey, claims)
		c.Next()
	}
}

// GetAdminClaims returns the claims stored by AdminAuth.
func GetAdminClaims(c *gin.Context) (*security.AdminClaims, bool) {
	v, ok := c.Get(adminClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.AdminClaims)
	return claims, ok
}
