package cancellation

import (
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	boxOffice := middleware.RequireRoles(middleware.RoleBoxOffice, middleware.RoleAdmin)

	rg.GET("/cancellation-reasons", auth, boxOffice, controller.ListReasons) // GET /api/v1/cancellation-reasons

	// Manual refund retry
	rg.POST("/tickets/:id/refund", auth, boxOffice, controller.RetryRefund) // POST /api/v1/tickets/:id/refund
}
