package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	// Create logger
	logger := slog.New(handler)

	return &Logger{
		Logger: logger,
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Ticketing logging methods

// LogTicketsIssued logs a committed issuance batch
func (l *Logger) LogTicketsIssued(ctx context.Context, eventID, sectorID string, count int, firstNumber, lastNumber int64) {
	l.Logger.InfoContext(ctx,
		"🎫 Tickets Issued",
		slog.String("ticketed_event_id", eventID),
		slog.String("sector_id", sectorID),
		slog.Int("count", count),
		slog.Int64("first_progressive", firstNumber),
		slog.Int64("last_progressive", lastNumber),
	)
}

// LogIssuanceRejected logs an issuance that failed before or during its transaction
func (l *Logger) LogIssuanceRejected(ctx context.Context, eventID, sectorID, kind string, err error) {
	l.Logger.WarnContext(ctx,
		"Issuance Rejected",
		slog.String("ticketed_event_id", eventID),
		slog.String("sector_id", sectorID),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}

// LogTicketUsed logs a check-in
func (l *Logger) LogTicketUsed(ctx context.Context, ticketID string) {
	l.Logger.InfoContext(ctx,
		"✅ Ticket Used",
		slog.String("ticket_id", ticketID),
	)
}

// LogTicketCancelled logs a committed cancellation
func (l *Logger) LogTicketCancelled(ctx context.Context, ticketID, reasonCode string, refundRequested bool) {
	l.Logger.InfoContext(ctx,
		"❌ Ticket Cancelled",
		slog.String("ticket_id", ticketID),
		slog.String("reason_code", reasonCode),
		slog.Bool("refund_requested", refundRequested),
	)
}

// LogRefundCompleted logs a successful refund
func (l *Logger) LogRefundCompleted(ctx context.Context, ticketID, refundRef, amount string) {
	l.Logger.InfoContext(ctx,
		"💸 Refund Completed",
		slog.String("ticket_id", ticketID),
		slog.String("refund_reference", refundRef),
		slog.String("amount", amount),
	)
}

// LogRefundFailed logs a refund left pending for manual follow-up
func (l *Logger) LogRefundFailed(ctx context.Context, ticketID string, attempts int, err error) {
	l.Logger.ErrorContext(ctx,
		"Refund Failed",
		slog.String("ticket_id", ticketID),
		slog.Int("attempts", attempts),
		slog.String("error", err.Error()),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
