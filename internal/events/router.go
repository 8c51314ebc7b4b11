package events

import (
	"eventx/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse events
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)               // GET /api/v1/events
		publicEvents.GET("/upcoming", controller.GetUpcomingEvents) // GET /api/v1/events/upcoming
		publicEvents.GET("/:eventId", controller.GetEvent)          // GET /api/v1/events/:eventId
	}

	// Organizer routes - creating events requires an authenticated organizer
	organizerEvents := router.Group("/events")
	organizerEvents.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleOrganizer, middleware.RoleAdmin))
	{
		organizerEvents.POST("", controller.CreateEvent) // POST /api/v1/events
	}

	// Admin routes - event lifecycle and stats
	adminEvents := router.Group("/events")
	adminEvents.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminEvents.GET("/:eventId/stats", controller.GetEventStats)      // GET /api/v1/events/:eventId/stats
		adminEvents.POST("/:eventId/complete", controller.CompleteEvent)  // POST /api/v1/events/:eventId/complete
	}
}
