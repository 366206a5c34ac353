package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the authenticated user id.
const IdentityKey = "authUserID"

// Middleware rejects requests without a valid bearer token and stores the
// token subject under IdentityKey for downstream handlers.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		userID, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set(IdentityKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	v, _ := c.Get(IdentityKey)
	id, _ := v.(string)
	return id
}
