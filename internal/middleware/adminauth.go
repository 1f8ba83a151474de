package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/auth"
)

// identityKey is the gin context key holding the verified identity.
const identityKey = "identity"

// AdminAuth verifies the bearer token and authorizes administrators.
// An identity is an administrator when its stored claims carry admin=true
// or its verified email is on the allow-list; the latter keeps the
// moderation endpoints usable before the first bootstrap call.
// 401 and 403 are never conflated: an unverified caller gets 401, a
// verified non-admin gets 403.
func AdminAuth(verifier auth.TokenVerifier, allow *auth.AllowList, claims auth.ClaimStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if !isAdmin(c, identity, allow, claims) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, returning "" when the header is absent or malformed.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Identity returns the verified identity stored by AdminAuth.
func Identity(c *gin.Context) (*auth.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}

func isAdmin(c *gin.Context, identity *auth.Identity, allow *auth.AllowList, claims auth.ClaimStore) bool {
	current, err := claims.Get(c.Request.Context(), identity.UID)
	if err == nil {
		if v, ok := current[auth.AdminClaim].(bool); ok && v {
			return true
		}
	}
	return allow.Allows(identity.Email)
}
