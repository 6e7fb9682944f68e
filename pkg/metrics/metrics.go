package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets committed by issuance, per ticket type",
		},
		[]string{"ticket_type"},
	)

	issuanceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_issuance_failures_total",
			Help: "Issuance requests rejected or rolled back, per error kind",
		},
		[]string{"kind"},
	)

	issuanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_issuance_duration_seconds",
			Help:    "Wall time of the issuance transaction",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	ticketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transitions_total",
			Help: "Ticket status transitions",
		},
		[]string{"to"},
	)

	refunds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_refunds_total",
			Help: "Refund attempts by outcome",
		},
		[]string{"outcome"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func TrackTicketsIssued(ticketType string, count int) {
	ticketsIssued.WithLabelValues(ticketType).Add(float64(count))
}

func TrackIssuanceFailure(kind string) {
	if kind == "" {
		kind = "internal"
	}
	issuanceFailures.WithLabelValues(kind).Inc()
}

func TrackIssuanceDuration(d time.Duration) {
	issuanceDuration.Observe(d.Seconds())
}

func TrackTransition(to string) {
	ticketTransitions.WithLabelValues(to).Inc()
}

func TrackRefund(outcome string) {
	refunds.WithLabelValues(outcome).Inc()
}

// Middleware records per-route latency
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
