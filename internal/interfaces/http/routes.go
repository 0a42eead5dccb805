package http

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api/v1")
	{
		api.GET("/portfolio", handler.GetPortfolio)
		api.POST("/portfolio/refresh", handler.RefreshPrices)

		api.POST("/holdings", handler.AddHolding)
		api.DELETE("/holdings/:symbol", handler.RemoveHolding)

		api.GET("/history/totals", handler.GetTotalsHistory)
		api.GET("/history/symbols/:symbol", handler.GetSymbolHistory)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
