package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"trips/internal/domain"
)

// PaymentClient is the HTTP implementation of PaymentGateway.
type PaymentClient struct {
	http httpClient
}

// NewPaymentClient creates a payment service client for the given base URL.
func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{http: newHTTPClient(baseURL, timeout)}
}

type paymentPayload struct {
	PaymentID string  `json:"payment_id"`
	TripID    string  `json:"trip_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
}

func (p paymentPayload) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:     p.PaymentID,
		TripID: p.TripID,
		Amount: p.Amount,
		Method: domain.PaymentMethod(p.Method),
		Status: domain.PaymentStatus(p.Status),
	}
}

// Charge creates a charge for a completed trip.
func (c *PaymentClient) Charge(ctx context.Context, tripID string, amount float64, method domain.PaymentMethod) (*domain.Payment, error) {
	body, err := json.Marshal(map[string]any{
		"trip_id": tripID,
		"amount":  amount,
		"method":  method,
	})
	if err != nil {
		return nil, err
	}

	var payload paymentPayload
	status, err := c.http.do(ctx, http.MethodPost, "/payments/charge", bytes.NewReader(body), &payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("%w: charge for trip %s returned %d", ErrUnavailable, tripID, status)
	}

	return payload.toDomain(), nil
}

// GetByTrip returns the payment record for a trip.
func (c *PaymentClient) GetByTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	var payload paymentPayload
	status, err := c.http.do(ctx, http.MethodGet, "/payments/trip/"+tripID, nil, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: payment lookup for trip %s returned %d", ErrUnavailable, tripID, status)
	}

	return payload.toDomain(), nil
}

// Refund refunds a previously successful payment.
func (c *PaymentClient) Refund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var payload paymentPayload
	status, err := c.http.do(ctx, http.MethodPatch, "/payments/"+paymentID+"/refund", nil, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: refund of payment %s returned %d", ErrUnavailable, paymentID, status)
	}

	return payload.toDomain(), nil
}

// Ensure PaymentClient implements PaymentGateway.
var _ PaymentGateway = (*PaymentClient)(nil)
