package response

import (
	"net/http"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps an application error kind onto an HTTP status and writes
// the standard envelope. data is attached for partial outcomes such as a
// committed cancellation whose refund failed.
func RespondError(c *gin.Context, message string, err error, data interface{}) {
	kind := apperror.KindOf(err)
	code := StatusCode(kind)
	if kind == "" {
		kind = "INTERNAL_ERROR"
	}
	if code >= http.StatusInternalServerError {
		logger.GetDefault().LogHTTPError(c, err, code)
	}
	RespondJSON(c, "error", code, message, data, ErrorDetail{
		Kind:  string(kind),
		Cause: apperror.MessageOf(err),
	})
}

// StatusCode returns the HTTP status for an error kind.
func StatusCode(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInventoryExhausted, apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindPaymentFailure:
		return http.StatusPaymentRequired
	case apperror.KindExternalRefundFailure:
		return http.StatusBadGateway
	case apperror.KindDeviceNotReady:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
