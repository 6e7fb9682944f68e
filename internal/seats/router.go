package seats

import (
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {

	// PUBLIC INVENTORY READS

	rg.GET("/ticketed-events/:id/sectors", controller.GetSectorsByEvent) // GET /api/v1/ticketed-events/:id/sectors

	sectors := rg.Group("/sectors")
	{
		sectors.GET("/:id/availability", controller.GetAvailability) // GET /api/v1/sectors/:id/availability
		sectors.GET("/:id/seats", controller.GetSeatsBySector)       // GET /api/v1/sectors/:id/seats
	}

	// ADMIN INVENTORY OPERATIONS

	adminSectors := rg.Group("/admin/sectors")
	adminSectors.Use(auth, middleware.RequireAdmin())
	{
		adminSectors.PATCH("/:id/sales", controller.UpdateSales) // PATCH /api/v1/admin/sectors/:id/sales
	}

	adminSeats := rg.Group("/admin/seats")
	adminSeats.Use(auth, middleware.RequireAdmin())
	{
		adminSeats.PATCH("/:id/status", controller.UpdateSeatStatus) // PATCH /api/v1/admin/seats/:id/status
	}
}
