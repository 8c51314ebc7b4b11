package checkin

import (
	"eventx/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCheckInRoutes(router *gin.RouterGroup, controller Controller) {
	// Gate staff and admins scan tickets at the venue
	checkinGroup := router.Group("/checkin")
	checkinGroup.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleGate, middleware.RoleAdmin))
	{
		checkinGroup.POST("", controller.CheckIn) // POST /api/v1/checkin
	}
}
