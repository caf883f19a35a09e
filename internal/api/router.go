// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corphon/ComicProxy/internal/utils"
)

// SetupRouter 配置HTTP路由
func SetupRouter(handler *Handler, logger *utils.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(logger, handler.Comic.Metrics()))
	r.Use(corsMiddleware())

	r.GET("/health", handler.Health)

	api := r.Group("/api")
	{
		api.POST("/generate-script", handler.GenerateScript)
		api.POST("/generate-image", handler.GenerateImage)
		api.POST("/regenerate-image", handler.GenerateImage)

		api.GET("/styles", handler.ListStyles)
		api.GET("/metrics", handler.GetMetrics)
	}

	return r
}
