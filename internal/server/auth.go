// internal/server/auth.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FunctionKeyAuth guards a route group with shared function keys. The key is
// accepted from the x-functions-key header or the code query parameter. An
// empty key list disables the check entirely.
func FunctionKeyAuth(keys []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}

	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader("x-functions-key")
		if key == "" {
			key = c.Query("code")
		}

		if _, ok := allowed[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
