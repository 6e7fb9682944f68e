package tickets

import (
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	boxOffice := middleware.RequireRoles(middleware.RoleBoxOffice, middleware.RoleAdmin)
	anyStaff := middleware.RequireRoles(middleware.RoleBoxOffice, middleware.RoleAdmin, middleware.RoleCheckin)
	checkin := middleware.RequireRoles(middleware.RoleCheckin, middleware.RoleAdmin)

	tickets := rg.Group("/tickets")
	tickets.Use(auth)
	{
		tickets.POST("/issue", boxOffice, controller.IssueTickets)                        // POST /api/v1/tickets/issue
		tickets.GET("/:id", anyStaff, controller.GetTicket)                               // GET /api/v1/tickets/:id
		tickets.POST("/:id/cancel", boxOffice, controller.CancelTicket)                   // POST /api/v1/tickets/:id/cancel
		tickets.POST("/:id/use", checkin, controller.MarkUsed)                            // POST /api/v1/tickets/:id/use
		tickets.PATCH("/:id/participant", boxOffice, controller.ChangeParticipant)        // PATCH /api/v1/tickets/:id/participant
		tickets.GET("/:id/seal/verify", middleware.RequireAdmin(), controller.VerifySeal) // GET /api/v1/tickets/:id/seal/verify
	}

	// Listings
	rg.GET("/ticketed-events/:id/tickets", auth, middleware.RequireAdmin(), controller.ListEventTickets) // GET /api/v1/ticketed-events/:id/tickets
	rg.GET("/transactions/:id/tickets", auth, boxOffice, controller.ListTransactionTickets)              // GET /api/v1/transactions/:id/tickets
}
