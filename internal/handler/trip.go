package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trips/internal/domain"
	"trips/internal/service"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	TripID          string  `json:"trip_id"`
	RiderID         string  `json:"rider_id"`
	DriverID        string  `json:"driver_id,omitempty"`
	PickupZone      string  `json:"pickup_zone"`
	DropZone        string  `json:"drop_zone"`
	Status          string  `json:"status"`
	RequestedAt     string  `json:"requested_at"`
	AssignedAt      string  `json:"assigned_at,omitempty"`
	AcceptedAt      string  `json:"accepted_at,omitempty"`
	CompletedAt     string  `json:"completed_at,omitempty"`
	CancelledAt     string  `json:"cancelled_at,omitempty"`
	DistanceKm      float64 `json:"distance_km,omitempty"`
	BaseFare        float64 `json:"base_fare,omitempty"`
	SurgeMultiplier float64 `json:"surge_multiplier,omitempty"`
	TotalFare       float64 `json:"total_fare,omitempty"`
	CancellationFee float64 `json:"cancellation_fee"`
}

// FareQuoteResponse is the HTTP representation of a fare quote.
type FareQuoteResponse struct {
	DistanceKm         float64 `json:"distance_km"`
	BaseFare           float64 `json:"base_fare"`
	PerKmRate          float64 `json:"per_km_rate"`
	SurgeMultiplier    float64 `json:"surge_multiplier"`
	MinimumFareApplied bool    `json:"minimum_fare_applied"`
	CalculatedFare     float64 `json:"calculated_fare"`
	Currency           string  `json:"currency"`
}

// PaymentInfo contains payment details in a response.
type PaymentInfo struct {
	PaymentID string  `json:"payment_id"`
	TripID    string  `json:"trip_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Status    string  `json:"status"`
}

// CompleteTripResponse is the HTTP response for trip completion. A
// failed charge shows up as payment_error next to the completed trip.
type CompleteTripResponse struct {
	Trip         TripResponse      `json:"trip"`
	FareQuote    FareQuoteResponse `json:"fare_quote"`
	Payment      *PaymentInfo      `json:"payment,omitempty"`
	PaymentError string            `json:"payment_error,omitempty"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	r := TripResponse{
		TripID:          trip.ID,
		RiderID:         trip.RiderID,
		DriverID:        trip.DriverID,
		PickupZone:      trip.PickupZone,
		DropZone:        trip.DropZone,
		Status:          string(trip.Status),
		RequestedAt:     trip.RequestedAt.Format(timeFormat),
		DistanceKm:      trip.DistanceKm,
		BaseFare:        trip.BaseFare,
		SurgeMultiplier: trip.SurgeMultiplier,
		TotalFare:       trip.TotalFare,
		CancellationFee: trip.CancellationFee,
	}

	setIfPresent := func(dst *string, t time.Time) {
		if !t.IsZero() {
			*dst = t.Format(timeFormat)
		}
	}
	setIfPresent(&r.AssignedAt, trip.AssignedAt)
	setIfPresent(&r.AcceptedAt, trip.AcceptedAt)
	setIfPresent(&r.CompletedAt, trip.CompletedAt)
	setIfPresent(&r.CancelledAt, trip.CancelledAt)

	return r
}

func toQuoteResponse(quote *domain.FareQuote) FareQuoteResponse {
	return FareQuoteResponse{
		DistanceKm:         quote.DistanceKm,
		BaseFare:           quote.BaseFare,
		PerKmRate:          quote.PerKmRate,
		SurgeMultiplier:    quote.SurgeMultiplier,
		MinimumFareApplied: quote.MinimumFareApplied,
		CalculatedFare:     quote.CalculatedFare,
		Currency:           quote.Currency,
	}
}

func toPaymentInfo(payment *domain.Payment) *PaymentInfo {
	if payment == nil {
		return nil
	}
	return &PaymentInfo{
		PaymentID: payment.ID,
		TripID:    payment.TripID,
		Amount:    payment.Amount,
		Status:    string(payment.Status),
	}
}

// createTripRequest is the body of POST /v1/trips.
type createTripRequest struct {
	RiderID    string `json:"rider_id"`
	PickupZone string `json:"pickup_zone"`
	DropZone   string `json:"drop_zone"`
	AutoAssign bool   `json:"auto_assign"`
}

// CreateTrip handles POST /v1/trips. With auto_assign the new trip is
// immediately run through assign+accept.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidZone)
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		RiderID:    req.RiderID,
		PickupZone: req.PickupZone,
		DropZone:   req.DropZone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.AutoAssign {
		accepted, err := h.tripService.AssignAndAccept(c.Request.Context(), trip.ID)
		if err != nil {
			// The trip exists in REQUESTED state; only the assignment failed.
			respondError(c, err)
			return
		}
		trip = accepted
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// AssignTrip handles POST /v1/trips/:id/assign
func (h *TripHandler) AssignTrip(c *gin.Context) {
	trip, err := h.tripService.AssignAndAccept(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// AcceptTrip handles POST /v1/trips/:id/accept
func (h *TripHandler) AcceptTrip(c *gin.Context) {
	trip, err := h.tripService.AcceptTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// completeTripRequest is the body of POST /v1/trips/:id/complete.
type completeTripRequest struct {
	DistanceKm float64 `json:"distance_km"`
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	var req completeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidDistance)
		return
	}

	result, err := h.tripService.CompleteTrip(c.Request.Context(), service.CompleteTripRequest{
		TripID:     c.Param("id"),
		DistanceKm: req.DistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := CompleteTripResponse{
		Trip:      toTripResponse(result.Trip),
		FareQuote: toQuoteResponse(result.Quote),
		Payment:   toPaymentInfo(result.Payment),
	}
	if result.PaymentError != nil {
		response.PaymentError = result.PaymentError.Error()
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	trip, err := h.tripService.CancelTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// RefundTrip handles POST /v1/trips/:id/refund
func (h *TripHandler) RefundTrip(c *gin.Context) {
	payment, err := h.tripService.RefundTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentInfo(payment))
}

// CalculateFare handles POST /v1/trips/calculate — a quote only, no
// persistence.
func (h *TripHandler) CalculateFare(c *gin.Context) {
	var req completeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidDistance)
		return
	}

	quote, err := h.tripService.CalculateFare(req.DistanceKm)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toQuoteResponse(quote))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}
