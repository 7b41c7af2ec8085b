package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"trips/internal/domain"
	"trips/internal/middleware"
)

var (
	// ErrUnavailable is returned when a collaborator service is
	// unreachable or responds with a server error.
	ErrUnavailable = errors.New("upstream service unavailable")

	// ErrPaymentNotFound is returned when no payment record exists for
	// a trip.
	ErrPaymentNotFound = errors.New("payment not found")
)

// DriverDirectory is the interface to the driver directory service.
type DriverDirectory interface {
	// ListActive returns the drivers currently eligible for assignment.
	ListActive(ctx context.Context) ([]domain.Driver, error)

	// SetActive requests a change to a driver's active flag. The
	// directory owns the flag; this is a request, not a local mutation.
	SetActive(ctx context.Context, driverID string, active bool) error
}

// PaymentGateway is the interface to the payment service.
type PaymentGateway interface {
	// Charge creates a charge for a completed trip.
	Charge(ctx context.Context, tripID string, amount float64, method domain.PaymentMethod) (*domain.Payment, error)

	// GetByTrip returns the payment record for a trip, or
	// ErrPaymentNotFound if none exists.
	GetByTrip(ctx context.Context, tripID string) (*domain.Payment, error)

	// Refund refunds a previously successful payment.
	Refund(ctx context.Context, paymentID string) (*domain.Payment, error)
}

// httpClient wraps the shared request plumbing for collaborator calls:
// a bounded timeout and correlation-id propagation.
type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string, timeout time.Duration) httpClient {
	return httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// do performs a request against the collaborator and decodes the JSON
// response into out (when out is non-nil). Transport failures and 5xx
// responses map to ErrUnavailable.
func (c httpClient) do(ctx context.Context, method, path string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cid := middleware.CorrelationIDFromContext(ctx); cid != "" {
		req.Header.Set(middleware.CorrelationHeader, cid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decoding %s response: %v", ErrUnavailable, path, err)
		}
	}

	return resp.StatusCode, nil
}
