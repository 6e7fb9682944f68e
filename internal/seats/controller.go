package seats

import (
	"net/http"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// SECTORS

func (c *Controller) GetSectorsByEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticketed event ID", nil, err.Error())
		return
	}

	sectors, err := c.service.ListSectors(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, "Failed to get sectors", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sectors retrieved successfully", sectors, nil)
}

func (c *Controller) GetAvailability(ctx *gin.Context) {
	sectorID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid sector ID", nil, err.Error())
		return
	}

	snapshot, err := c.service.GetAvailability(ctx.Request.Context(), sectorID)
	if err != nil {
		response.RespondError(ctx, "Failed to get availability", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", snapshot, nil)
}

func (c *Controller) GetSeatsBySector(ctx *gin.Context) {
	sectorID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid sector ID", nil, err.Error())
		return
	}

	seats, err := c.service.ListSeats(ctx.Request.Context(), sectorID)
	if err != nil {
		response.RespondError(ctx, "Failed to get seats", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully", seats, nil)
}

// ADMIN

func (c *Controller) UpdateSales(ctx *gin.Context) {
	sectorID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid sector ID", nil, err.Error())
		return
	}

	var req UpdateSalesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	sector, err := c.service.SetSalesSuspended(ctx.Request.Context(), sectorID, *req.Suspended)
	if err != nil {
		response.RespondError(ctx, "Failed to update sector sales", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sector sales updated successfully", sector, nil)
}

func (c *Controller) UpdateSeatStatus(ctx *gin.Context) {
	seatID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	var req UpdateSeatStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	seat, err := c.service.SetSeatStatus(ctx.Request.Context(), seatID, SeatStatus(req.Status))
	if err != nil {
		response.RespondError(ctx, "Failed to update seat", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat updated successfully", seat, nil)
}
