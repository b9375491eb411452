package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AfroSamurai-hub/OzzServe/internal/shared"
)

// RequireRole rejects requests whose principal role is not in the allow
// list. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(shared.CtxKeyRole)
		if _, ok := allowed[role]; !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Access denied for role",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
