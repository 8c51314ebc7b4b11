package cancellation

import (
	"eventx/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCancellationRoutes(router *gin.RouterGroup, controller Controller) {
	// Cancelling an event refunds every outstanding ticket; admins only
	cancellationGroup := router.Group("/cancellations")
	cancellationGroup.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		cancellationGroup.POST("/:eventId", controller.CancelEvent)    // POST /api/v1/cancellations/:eventId
		cancellationGroup.GET("/:eventId", controller.GetCancellation) // GET /api/v1/cancellations/:eventId
		cancellationGroup.GET("", controller.GetAllCancellations)      // GET /api/v1/cancellations
	}
}
