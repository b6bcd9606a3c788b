package middleware

import (
	"net/http"
	"strings"

	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// Auth verifies the Authorization: Bearer <token> header and annotates the
// request context with the resolved identity.
//
// The token claims are trusted verbatim; there is no database lookup, so a
// user deleted after issuance keeps authenticating until the signing secret
// is rotated.
func Auth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "authorization required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "authorization required"})
			return
		}

		ident, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}

		c.Set(CtxUserID, ident.UserID)
		c.Set(CtxRole, ident.Role)
		c.Next()
	}
}
