package events

import (
	"net/http"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetTicketedEvent(c *gin.Context)
	UpdateTicketingStatus(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetTicketedEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticketed event ID", nil, err.Error())
		return
	}

	event, err := ctrl.service.GetTicketedEvent(c.Request.Context(), eventID)
	if err != nil {
		response.RespondError(c, "Failed to get ticketed event", err, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticketed event retrieved successfully", event, nil)
}

func (ctrl *controller) UpdateTicketingStatus(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticketed event ID", nil, err.Error())
		return
	}

	var req UpdateTicketingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	event, err := ctrl.service.ChangeTicketingStatus(c.Request.Context(), eventID, TicketingStatus(req.Status))
	if err != nil {
		response.RespondError(c, "Failed to update ticketing status", err, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticketing status updated successfully", event, nil)
}
