package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trips/internal/repository"
	"trips/internal/service"
)

// ErrorResponse carries a human-readable message and a machine-stable
// reason code.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// respondError sends an error response with the mapped status code.
// Unknown errors collapse to a generic 500 so no internal detail leaks;
// the full error is attached to the gin context for the request logger.
func respondError(c *gin.Context, err error) {
	code, reason := classifyError(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}

	_ = c.Error(err)
	c.JSON(code, ErrorResponse{Error: message, Reason: reason})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// classifyError maps service/repository errors to an HTTP status and a
// stable reason code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"

	case errors.Is(err, service.ErrNoPaymentFound):
		return http.StatusNotFound, "NO_PAYMENT_FOUND"

	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidZone),
		errors.Is(err, service.ErrInvalidDistance):
		return http.StatusBadRequest, "INVALID_INPUT"

	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusBadRequest, "INVALID_TRANSITION"

	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, "CONFLICT"

	case errors.Is(err, service.ErrNoDriversAvailable):
		return http.StatusServiceUnavailable, "NO_DRIVERS_AVAILABLE"

	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"

	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
