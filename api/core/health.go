package core

import (
	"net/http"
	"time"

	"github.com/anoixa/registration-system/config"
	"github.com/anoixa/registration-system/database"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthHandler 健康检查处理器
type HealthHandler struct {
	factory *database.Factory
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(factory *database.Factory) *HealthHandler {
	return &HealthHandler{factory: factory}
}

// Handle 健康检查 GET /health
func (h *HealthHandler) Handle(c *gin.Context) {
	dbStatus := h.checkDatabase()

	health := gin.H{
		"status":  "ok",
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks": gin.H{
			"database": dbStatus,
		},
	}

	httpStatus := http.StatusOK
	if dbStatus != "ok" {
		health["status"] = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, health)
}

func (h *HealthHandler) checkDatabase() string {
	if h.factory == nil {
		return "not initialized"
	}
	if err := h.factory.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}
