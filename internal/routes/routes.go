package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tobi647/beer-distribution-app-sub000/internal/container"
)

func RegisterRoutes(router *gin.Engine, c *container.Container) {
	c.StockHandler.RegisterRoutes(router)
	c.SupplierHandler.RegisterRoutes(router)
	c.OrderHandler.RegisterRoutes(router)
}

func RegisterUtilityRoutes(router *gin.Engine, logger *zap.Logger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		logger.Debug("Health check successful")
	})
}
