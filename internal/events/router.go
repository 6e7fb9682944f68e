package events

import (
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	// Public routes
	publicEvents := router.Group("/ticketed-events")
	{
		publicEvents.GET("/:id", controller.GetTicketedEvent) // GET /api/v1/ticketed-events/:id
	}

	// Admin routes
	adminEvents := router.Group("/admin/ticketed-events")
	adminEvents.Use(auth, middleware.RequireAdmin())
	{
		adminEvents.PATCH("/:id/status", controller.UpdateTicketingStatus) // PATCH /api/v1/admin/ticketed-events/:id/status
	}
}
