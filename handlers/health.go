package handlers

import (
	"net/http"

	"tailortalk/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last collaborator health snapshot.
func HealthHandler(c *gin.Context) {
	snapshot := utils.GetHealthStatus()
	status := "healthy"
	for _, ok := range snapshot.Services {
		if !ok {
			status = "degraded"
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"service":    utils.AppName,
		"version":    utils.AppVersion,
		"services":   snapshot.Services,
		"checked_at": snapshot.CheckedAt,
	})
}

// BannerHandler answers the root path.
func BannerHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + utils.AppName,
		"version": utils.AppVersion,
		"health":  "/health",
	})
}
