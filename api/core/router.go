package core

import (
	"net/http"

	"github.com/anoixa/registration-system/api/common"
	handlerDevices "github.com/anoixa/registration-system/api/handler/devices"
	"github.com/anoixa/registration-system/api/handler/generator"
	"github.com/anoixa/registration-system/api/middleware"
	"github.com/anoixa/registration-system/config"
	"github.com/anoixa/registration-system/internal/app"
	"github.com/anoixa/registration-system/internal/status"
	"github.com/gin-gonic/gin"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container      *app.Container
	APIRateLimiter *middleware.IPRateLimiter
	Config         *config.Config
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.Container.GetDatabaseFactory())
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, status.MsgSuccess, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.GetMetrics())
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	deviceHandler := handlerDevices.NewHandler(deps.Container.DevicesRepo, deps.Container.Engine)
	generatorHandler := generator.NewHandler(deps.Container.ActivationsRepo)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	if deps.APIRateLimiter != nil {
		apiGroup.Use(deps.APIRateLimiter.Middleware())
	}
	{
		deviceGroup := apiGroup.Group("/device")
		{
			deviceGroup.POST("", deviceHandler.Register)                       // POST /api/device
			deviceGroup.GET("/:identifier", deviceHandler.GetBySerialNumber)   // GET /api/device/{serial_number}
			deviceGroup.GET("/:identifier/left", deviceHandler.Left)           // GET /api/device/{device_id}/left
			deviceGroup.POST("/:identifier/activate", deviceHandler.Activate)  // POST /api/device/{device_id}/activate
			deviceGroup.POST("/:identifier/unactivate", deviceHandler.Unactivate) // POST /api/device/{device_id}/unactivate
		}

		apiGroup.GET("/generator/admin/:hour", generatorHandler.Generate) // GET /api/generator/admin/{hour}
	}
}
