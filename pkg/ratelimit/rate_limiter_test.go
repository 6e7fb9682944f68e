package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testConfig() *Config {
	return &Config{
		Enabled:          true,
		WindowDuration:   time.Minute,
		DefaultRequests:  100,
		IssuanceRequests: 5,
		HealthRequests:   1000,
		WhitelistedIPs:   []string{"10.0.0.1"},
	}
}

func expectWindow(mock redismock.ClientMock, ip string, limitType RateLimitType, limit int) *redismock.ExpectedCmd {
	key := constants.BuildRateLimitKey(ip, string(limitType))
	return mock.ExpectEvalSha(slidingWindowScript.Hash(), []string{key},
		fixedNow.Add(-time.Minute).UnixMilli(),
		fixedNow.UnixMilli(),
		limit,
		time.Minute.Milliseconds(),
		fmt.Sprintf("%d-%d", fixedNow.UnixNano(), len(ip)),
	)
}

func TestIsAllowed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, testConfig())
	limiter.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	expectWindow(mock, "1.2.3.4", RateLimitTypeIssuance, 5).SetVal([]interface{}{int64(1), int64(4)})
	result, err := limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeIssuance)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 5, result.Limit)
	assert.Equal(t, 4, result.Remaining)
	assert.Equal(t, fixedNow.Add(time.Minute).Unix(), result.ResetTime)

	expectWindow(mock, "1.2.3.4", RateLimitTypeIssuance, 5).SetVal([]interface{}{int64(0), int64(0)})
	result, err = limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeIssuance)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	expectWindow(mock, "1.2.3.4", RateLimitTypeDefault, 100).SetErr(errors.New("connection reset"))
	_, err = limiter.IsAllowed(ctx, "1.2.3.4", RateLimitTypeDefault)
	assert.Error(t, err)

	// whitelisted clients never reach redis
	result, err = limiter.IsAllowed(ctx, "10.0.0.1", RateLimitTypeIssuance)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitType(t *testing.T) {
	cases := map[string]RateLimitType{
		"/health":                          RateLimitTypeHealth,
		"/metrics":                         RateLimitTypeHealth,
		"/api/v1/admin/sectors/:id/sales":  RateLimitTypeAdmin,
		"/api/v1/tickets/issue":            RateLimitTypeIssuance,
		"/api/v1/tickets/:id/cancel":       RateLimitTypeCancellation,
		"/api/v1/tickets/:id/refund":       RateLimitTypeCancellation,
		"/api/v1/tickets/:id/use":          RateLimitTypeCheckin,
		"/api/v1/sectors/:id/availability": RateLimitTypePublic,
		"/api/v1/ticketed-events/:id":      RateLimitTypePublic,
		"/api/v1/tickets/:id":              RateLimitTypeDefault,
		"/api/v1/cancellation-reasons":     RateLimitTypePublic,
	}
	for path, want := range cases {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, testConfig())
	limiter.now = func() time.Time { return fixedNow }

	engine := gin.New()
	engine.Use(Middleware(limiter))
	engine.POST("/api/v1/tickets/issue", func(c *gin.Context) { c.Status(http.StatusCreated) })

	expectWindow(mock, "192.0.2.7", RateLimitTypeIssuance, 5).SetVal([]interface{}{int64(1), int64(0)})
	expectWindow(mock, "192.0.2.7", RateLimitTypeIssuance, 5).SetVal([]interface{}{int64(0), int64(0)})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/issue", nil)
		req.Header.Set("X-Forwarded-For", "192.0.2.7, 10.1.1.1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "5", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
