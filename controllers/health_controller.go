package controllers

import (
	"net/http"
	"time"

	"sftpfetchapi/config"
	"sftpfetchapi/models"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports that the service is up.
// @Summary Health check
// @Description Static liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   config.ServiceName,
		Version:   config.Version,
		Timestamp: time.Now().UTC(),
	})
}

// RegisterHealthRoutes registers the liveness endpoint on rg.
func RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", healthCheck)
}
