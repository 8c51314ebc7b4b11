package tickets

import (
	"eventx/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - the resale board carries no owner identity
	publicTickets := router.Group("/tickets")
	{
		publicTickets.GET("/listings", controller.GetOpenListings) // GET /api/v1/tickets/listings
	}

	// Owner routes - everything else acts on the caller's own tickets
	ownerTickets := router.Group("/tickets")
	ownerTickets.Use(middleware.JWTAuth())
	{
		ownerTickets.GET("", controller.GetMyTickets)                            // GET /api/v1/tickets
		ownerTickets.GET("/:ticketId", controller.GetTicket)                     // GET /api/v1/tickets/:ticketId
		ownerTickets.GET("/:ticketId/presentation", controller.GetPresentation)  // GET /api/v1/tickets/:ticketId/presentation
		ownerTickets.POST("/:ticketId/list", controller.ListForResale)           // POST /api/v1/tickets/:ticketId/list
		ownerTickets.DELETE("/:ticketId/list", controller.WithdrawListing)       // DELETE /api/v1/tickets/:ticketId/list
		ownerTickets.POST("/:ticketId/buy", controller.BuyListing)               // POST /api/v1/tickets/:ticketId/buy
		ownerTickets.POST("/:ticketId/transfer", controller.Transfer)            // POST /api/v1/tickets/:ticketId/transfer
		ownerTickets.POST("/:ticketId/refund", controller.Refund)                // POST /api/v1/tickets/:ticketId/refund
	}
}
