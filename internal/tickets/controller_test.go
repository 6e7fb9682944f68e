package tickets_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/payments"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/validation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
}

func (e envelope) kind(t *testing.T) string {
	t.Helper()
	var detail struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(e.Errors, &detail))
	return detail.Kind
}

func mustParse(t *testing.T, id string) uuid.UUID {
	t.Helper()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	return parsed
}

// staffAuth stands in for the JWT middleware
func staffAuth(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "staff-42")
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func newAPI(t *testing.T, f *fixture, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterCustomValidators())

	engine := gin.New()
	tickets.SetupTicketRoutes(engine.Group("/api/v1"), tickets.NewController(f.svc), staffAuth(role))
	return engine
}

func call(t *testing.T, engine *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestIssueEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	api := newAPI(t, f, middleware.RoleBoxOffice)

	code, env := call(t, api, http.MethodPost, "/api/v1/tickets/issue", map[string]interface{}{
		"ticketed_event_id": f.event.ID.String(),
		"sector_id":         f.general.ID.String(),
		"ticket_type":       "INT",
		"quantity":          2,
		"payment_method":    "cash",
	})
	require.Equal(t, http.StatusCreated, code)

	var resp tickets.IssueTicketsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, int64(1), resp.Tickets[0].ProgressiveNumber)
	require.NotNil(t, resp.Transaction)

	stored := f.store.Ticket(mustParse(t, resp.Tickets[0].ID))
	assert.Equal(t, "staff-42", *stored.IssuedBy)

	code, env = call(t, api, http.MethodPost, "/api/v1/tickets/issue", map[string]interface{}{
		"ticketed_event_id": f.event.ID.String(),
		"sector_id":         f.general.ID.String(),
		"ticket_type":       "VIP",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
}

func TestIssueEndpointMapsInventoryExhausted(t *testing.T) {
	f := newFixture(t, nil)
	api := newAPI(t, f, middleware.RoleAdmin)
	seat := f.seats[0].ID.String()

	body := map[string]interface{}{
		"ticketed_event_id": f.event.ID.String(),
		"sector_id":         f.numbered.ID.String(),
		"seat_id":           seat,
		"ticket_type":       "INT",
	}
	code, _ := call(t, api, http.MethodPost, "/api/v1/tickets/issue", body)
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, api, http.MethodPost, "/api/v1/tickets/issue", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVENTORY_EXHAUSTED", env.kind(t))
}

func TestCancelEndpointReportsRefundFailure(t *testing.T) {
	f := newFixture(t, nil)
	api := newAPI(t, f, middleware.RoleBoxOffice)
	ticket := f.issueCard(t)
	f.gateway.SetFailRefunds(payments.ErrUnavailable)

	code, env := call(t, api, http.MethodPost, "/api/v1/tickets/"+ticket.ID.String()+"/cancel", map[string]interface{}{
		"reason_code": "5.2",
		"refund":      true,
	})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "EXTERNAL_REFUND_FAILURE", env.kind(t))

	var cancelled tickets.TicketResponse
	require.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, tickets.StatusCancelled, cancelled.Status)
	assert.Equal(t, 1, cancelled.RefundAttempts)
}

func TestUseEndpointRequiresCheckinRole(t *testing.T) {
	f := newFixture(t, nil)
	ticket := f.issueGeneral(t, 1).Tickets[0]

	code, _ := call(t, newAPI(t, f, middleware.RoleBoxOffice), http.MethodPost, "/api/v1/tickets/"+ticket.ID.String()+"/use", nil)
	assert.Equal(t, http.StatusForbidden, code)

	checkin := newAPI(t, f, middleware.RoleCheckin)
	code, _ = call(t, checkin, http.MethodPost, "/api/v1/tickets/"+ticket.ID.String()+"/use", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := call(t, checkin, http.MethodPost, "/api/v1/tickets/"+ticket.ID.String()+"/use", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.kind(t))

	code, _ = call(t, checkin, http.MethodPost, "/api/v1/tickets/not-a-uuid/use", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
