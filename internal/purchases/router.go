package purchases

import (
	"eventx/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPurchaseRoutes(router *gin.RouterGroup, controller Controller) {
	purchaseGroup := router.Group("/purchases")
	purchaseGroup.Use(middleware.JWTAuth())
	{
		purchaseGroup.POST("", controller.Purchase) // POST /api/v1/purchases
	}
}
