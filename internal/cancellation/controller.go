package cancellation

import (
	"net/http"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles HTTP requests for causali and refunds
type Controller struct {
	service Service
}

// NewController creates a new cancellation controller
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListReasons handles GET /api/v1/cancellation-reasons
func (c *Controller) ListReasons(ctx *gin.Context) {
	reasons, err := c.service.ListReasons(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, "Failed to get cancellation reasons", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cancellation reasons retrieved successfully", reasons, nil)
}

// RetryRefund handles POST /api/v1/tickets/:id/refund
func (c *Controller) RetryRefund(ctx *gin.Context) {
	ticketID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket ID", nil, err.Error())
		return
	}

	ticket, err := c.service.RequestRefund(ctx.Request.Context(), ticketID)
	if err != nil {
		response.RespondError(ctx, "Failed to refund ticket", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket refunded successfully", ticket.ToResponse(), nil)
}
