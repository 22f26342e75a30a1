package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRootRoutes registers the root and health endpoints.
func RegisterRootRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello Root!"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}
