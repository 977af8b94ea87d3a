package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floryst/aws-ahi-playground/internal/healthimaging"
	"github.com/floryst/aws-ahi-playground/internal/metadata"
	"github.com/floryst/aws-ahi-playground/internal/models"
)

// mapErrorToHTTPStatus maps gateway failures to HTTP status codes
func mapErrorToHTTPStatus(err error) int {
	var remoteErr *healthimaging.RemoteError
	if errors.As(err, &remoteErr) {
		switch remoteErr.Code {
		case healthimaging.CodeResourceNotFound:
			return http.StatusNotFound
		case healthimaging.CodeValidation:
			return http.StatusBadRequest
		case healthimaging.CodeThrottling, healthimaging.CodeServiceQuotaExceeded:
			return http.StatusServiceUnavailable
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}

	var contractErr *healthimaging.ContractError
	if errors.As(err, &contractErr) {
		return http.StatusBadGateway
	}
	var decodeErr *metadata.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// sanitizeError returns a safe error message for external clients.
// Vendor messages can carry account and resource identifiers, so only
// the category is exposed; the details are in the log.
func sanitizeError(status int) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusServiceUnavailable:
		return "imaging service temporarily unavailable"
	case http.StatusGatewayTimeout:
		return "imaging service timeout"
	case http.StatusBadGateway:
		return "imaging service request failed"
	default:
		return "internal server error"
	}
}

// writeError aborts the request with a complete JSON error body.
func writeError(c *gin.Context, err error) {
	status := mapErrorToHTTPStatus(err)
	id := requestID(c)

	slog.ErrorContext(c.Request.Context(), "Request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", status,
		"requestId", id,
		"error", err,
	)

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:     sanitizeError(status),
		Status:    status,
		RequestID: id,
	})
}
