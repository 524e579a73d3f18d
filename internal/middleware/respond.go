package middleware

import (
	"github.com/gin-gonic/gin"
)

// abortWithError stops the chain with the same body shape handlers use for failures.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "code": code, "message": message})
}
