package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/health"
)

// HealthController handles liveness and readiness probes
type HealthController struct {
	healthChecker *health.HealthChecker
}

// NewHealthController creates a new health controller
func NewHealthController(healthChecker *health.HealthChecker) *HealthController {
	return &HealthController{healthChecker: healthChecker}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// HealthReady reports 503 while the store is unreachable or in degraded mode
func (c *HealthController) HealthReady(ctx *gin.Context) {
	status := c.healthChecker.GetHealthStatus(ctx)
	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, status)
}
