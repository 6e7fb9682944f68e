package tickets

import (
	"net/http"
	"strconv"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"
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

// IssueTickets godoc
// @Summary Issue fiscal tickets
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body IssueTicketsRequest true "Issuance request"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Failure 503 {object} response.StandardApiResponse
// @Router /tickets/issue [post]
func (c *Controller) IssueTickets(ctx *gin.Context) {
	var req IssueTicketsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	issueReq, err := req.toIssueRequest()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}
	issueReq.ActorID = middleware.ActorID(ctx)

	result, err := c.service.Issue(ctx.Request.Context(), issueReq)
	if err != nil {
		response.RespondError(ctx, "Failed to issue tickets", err, nil)
		return
	}

	resp := IssueTicketsResponse{Tickets: toTicketResponses(result.Tickets)}
	if result.Transaction != nil {
		txn := result.Transaction.ToResponse()
		resp.Transaction = &txn
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Tickets issued successfully", resp, nil)
}

func (req *IssueTicketsRequest) toIssueRequest() (IssueRequest, error) {
	eventID, err := uuid.Parse(req.TicketedEventID)
	if err != nil {
		return IssueRequest{}, err
	}
	sectorID, err := uuid.Parse(req.SectorID)
	if err != nil {
		return IssueRequest{}, err
	}

	rawSeats := req.SeatIDs
	if req.SeatID != nil && *req.SeatID != "" {
		rawSeats = append([]string{*req.SeatID}, rawSeats...)
	}
	seatIDs := make([]uuid.UUID, 0, len(rawSeats))
	for _, raw := range rawSeats {
		id, err := uuid.Parse(raw)
		if err != nil {
			return IssueRequest{}, err
		}
		seatIDs = append(seatIDs, id)
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
		if len(seatIDs) > 0 {
			quantity = len(seatIDs)
		}
	}

	return IssueRequest{
		TicketedEventID:      eventID,
		SectorID:             sectorID,
		SeatIDs:              seatIDs,
		TicketType:           seats.TicketType(req.TicketType),
		ParticipantFirstName: req.ParticipantFirstName,
		ParticipantLastName:  req.ParticipantLastName,
		Quantity:             quantity,
		PaymentMethod:        PaymentMethod(req.PaymentMethod),
		PaymentReference:     req.PaymentReference,
		PaymentToken:         req.PaymentToken,
		CustomerEmail:        req.CustomerEmail,
	}, nil
}

func (c *Controller) GetTicket(ctx *gin.Context) {
	ticketID, ok := parseTicketID(ctx)
	if !ok {
		return
	}

	ticket, err := c.service.GetTicket(ctx.Request.Context(), ticketID)
	if err != nil {
		response.RespondError(ctx, "Failed to get ticket", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket retrieved successfully", ticket.ToResponse(), nil)
}

// MarkUsed godoc
// @Summary Check in a ticket
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /tickets/{id}/use [post]
func (c *Controller) MarkUsed(ctx *gin.Context) {
	ticketID, ok := parseTicketID(ctx)
	if !ok {
		return
	}

	ticket, err := c.service.MarkUsed(ctx.Request.Context(), ticketID)
	if err != nil {
		response.RespondError(ctx, "Failed to check in ticket", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket checked in successfully", ticket.ToResponse(), nil)
}

// CancelTicket godoc
// @Summary Cancel a ticket with a causale, optionally refunding it
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body CancelTicketRequest true "Cancellation request"
// @Success 200 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Failure 502 {object} response.StandardApiResponse
// @Router /tickets/{id}/cancel [post]
func (c *Controller) CancelTicket(ctx *gin.Context) {
	ticketID, ok := parseTicketID(ctx)
	if !ok {
		return
	}

	var req CancelTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	ticket, err := c.service.Cancel(ctx.Request.Context(), CancelRequest{
		TicketID:   ticketID,
		ReasonCode: req.ReasonCode,
		Refund:     req.Refund,
		ActorID:    middleware.ActorID(ctx),
	})
	if err != nil {
		if ticket != nil {
			// cancellation committed, refund did not
			response.RespondError(ctx, "Ticket cancelled but refund failed", err, ticket.ToResponse())
			return
		}
		response.RespondError(ctx, "Failed to cancel ticket", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket cancelled successfully", ticket.ToResponse(), nil)
}

func (c *Controller) ChangeParticipant(ctx *gin.Context) {
	ticketID, ok := parseTicketID(ctx)
	if !ok {
		return
	}

	var req ChangeParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	ticket, err := c.service.ChangeParticipant(ctx.Request.Context(), ticketID, req.FirstName, req.LastName)
	if err != nil {
		response.RespondError(ctx, "Failed to change participant", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Participant updated successfully", ticket.ToResponse(), nil)
}

func (c *Controller) VerifySeal(ctx *gin.Context) {
	ticketID, ok := parseTicketID(ctx)
	if !ok {
		return
	}

	verification, err := c.service.VerifySeal(ctx.Request.Context(), ticketID)
	if err != nil {
		response.RespondError(ctx, "Failed to verify seal", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seal verified", verification, nil)
}

func (c *Controller) ListEventTickets(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticketed event ID", nil, err.Error())
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	tickets, total, err := c.service.ListEventTickets(ctx.Request.Context(), eventID, page, limit)
	if err != nil {
		response.RespondError(ctx, "Failed to list tickets", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets retrieved successfully", TicketListResponse{
		Tickets: toTicketResponses(tickets),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil)
}

func (c *Controller) ListTransactionTickets(ctx *gin.Context) {
	transactionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid transaction ID", nil, err.Error())
		return
	}

	tickets, err := c.service.ListTransactionTickets(ctx.Request.Context(), transactionID)
	if err != nil {
		response.RespondError(ctx, "Failed to list tickets", err, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets retrieved successfully", toTicketResponses(tickets), nil)
}

func parseTicketID(ctx *gin.Context) (uuid.UUID, bool) {
	ticketID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket ID", nil, err.Error())
		return uuid.Nil, false
	}
	return ticketID, true
}
