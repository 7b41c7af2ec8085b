package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trips/internal/client"
	"trips/internal/domain"
	"trips/internal/metrics"
	"trips/internal/middleware"
	"trips/internal/repository"
)

// cancellationFee is the fixed penalty for cancelling an ACCEPTED trip.
const cancellationFee = 5.0

// TripService orchestrates the trip lifecycle: it validates transitions,
// sequences the driver directory and payment calls each transition
// requires, and commits exactly one store write per successful
// transition. The store write is always last in a transition's
// remote-call sequence, making it the commit point: once it succeeds,
// the transition is durable even if a later best-effort side effect
// fails.
type TripService struct {
	tripRepo repository.TripRepository
	drivers  client.DriverDirectory
	payments client.PaymentGateway
	fare     *FareCalculator
	observer metrics.Observer
	log      *logrus.Logger
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	drivers client.DriverDirectory,
	payments client.PaymentGateway,
	fare *FareCalculator,
	observer metrics.Observer,
	log *logrus.Logger,
) *TripService {
	return &TripService{
		tripRepo: tripRepo,
		drivers:  drivers,
		payments: payments,
		fare:     fare,
		observer: observer,
		log:      log,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	RiderID    string
	PickupZone string
	DropZone   string
}

// CreateTrip inserts a new trip in REQUESTED state.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}
	if req.PickupZone == "" || req.DropZone == "" {
		return nil, ErrInvalidZone
	}

	trip := &domain.Trip{
		ID:          uuid.New().String(),
		RiderID:     req.RiderID,
		PickupZone:  req.PickupZone,
		DropZone:    req.DropZone,
		Status:      domain.TripStatusRequested,
		RequestedAt: time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.TripCreated()
	}

	return trip, nil
}

// AssignAndAccept reserves the first active driver, binds it to the
// trip, and moves the trip to ACCEPTED. The driver is reserved and
// bound before the status write so that a trip is never observably
// ACCEPTED without a bound driver. If no driver can be reserved, the
// trip is not mutated.
func (s *TripService) AssignAndAccept(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusRequested {
		return nil, ErrInvalidTransition
	}

	drivers, err := s.drivers.ListActive(ctx)
	if err != nil {
		return nil, upstreamError(err)
	}

	if len(drivers) == 0 {
		return nil, ErrNoDriversAvailable
	}

	// First available driver; selection optimization is the directory's
	// concern, not this service's.
	driver := drivers[0]

	if err := s.drivers.SetActive(ctx, driver.ID, false); err != nil {
		return nil, upstreamError(err)
	}

	now := time.Now()
	if _, err := s.tripRepo.AssignDriver(ctx, tripID, driver.ID, now); err != nil {
		s.logOrphanedReservation(ctx, tripID, driver.ID, err)
		return nil, transitionError(err)
	}

	accepted, err := s.tripRepo.Transition(ctx, tripID,
		domain.TripStatusRequested, domain.TripStatusAccepted,
		repository.TransitionFields{AcceptedAt: &now})
	if err != nil {
		s.logOrphanedReservation(ctx, tripID, driver.ID, err)
		return nil, transitionError(err)
	}

	if s.observer != nil {
		s.observer.TripAccepted()
	}

	return accepted, nil
}

// AcceptTrip moves a REQUESTED trip directly to ACCEPTED.
func (s *TripService) AcceptTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusRequested {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	accepted, err := s.tripRepo.Transition(ctx, tripID,
		domain.TripStatusRequested, domain.TripStatusAccepted,
		repository.TransitionFields{AcceptedAt: &now})
	if err != nil {
		return nil, transitionError(err)
	}

	if s.observer != nil {
		s.observer.TripAccepted()
	}

	return accepted, nil
}

// CompleteTripRequest contains the parameters for completing a trip.
type CompleteTripRequest struct {
	TripID     string
	DistanceKm float64
}

// CompleteTripResponse contains the result of completing a trip. The
// charge is attempted after the completion write commits; a failed
// charge is attached as PaymentError alongside the completed trip, not
// raised as the operation's error.
type CompleteTripResponse struct {
	Trip         *domain.Trip
	Quote        *domain.FareQuote
	Payment      *domain.Payment
	PaymentError error
}

// CompleteTrip moves an ACCEPTED trip to COMPLETED with the computed
// fare, then charges the payment service.
func (s *TripService) CompleteTrip(ctx context.Context, req CompleteTripRequest) (*CompleteTripResponse, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	quote, err := s.fare.Calculate(req.DistanceKm)
	if err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusAccepted {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	completed, err := s.tripRepo.Transition(ctx, req.TripID,
		domain.TripStatusAccepted, domain.TripStatusCompleted,
		repository.TransitionFields{
			CompletedAt:     &now,
			DistanceKm:      &quote.DistanceKm,
			BaseFare:        &quote.BaseFare,
			SurgeMultiplier: &quote.SurgeMultiplier,
			TotalFare:       &quote.CalculatedFare,
		})
	if err != nil {
		return nil, transitionError(err)
	}

	if s.observer != nil {
		s.observer.TripCompleted()
	}

	response := &CompleteTripResponse{Trip: completed, Quote: quote}

	// The completion write has committed; the charge is best-effort.
	payment, err := s.payments.Charge(ctx, completed.ID, quote.CalculatedFare, domain.PaymentMethodCard)
	switch {
	case err != nil:
		response.PaymentError = err
	case payment.Status != domain.PaymentStatusSuccess:
		response.Payment = payment
		response.PaymentError = fmt.Errorf("charge %s: %s", payment.ID, payment.Status)
	default:
		response.Payment = payment
	}

	if s.observer != nil {
		if response.PaymentError != nil {
			s.observer.PaymentFailed()
		} else {
			s.observer.PaymentSucceeded()
		}
	}

	if response.PaymentError != nil && s.log != nil {
		s.log.WithFields(logrus.Fields{
			"trip_id":        completed.ID,
			"correlation_id": middleware.CorrelationIDFromContext(ctx),
		}).WithError(response.PaymentError).Warn("trip completed but charge failed")
	}

	return response, nil
}

// CancelTrip cancels a REQUESTED or ACCEPTED trip. Cancelling an
// already-cancelled trip is a no-op returning the current state.
func (s *TripService) CancelTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status == domain.TripStatusCancelled {
		return trip, nil
	}

	if !trip.Status.CanTransitionTo(domain.TripStatusCancelled) {
		return nil, ErrInvalidTransition
	}

	fee := 0.0
	if trip.Status == domain.TripStatusAccepted {
		fee = cancellationFee
	}

	now := time.Now()
	cancelled, err := s.tripRepo.Transition(ctx, tripID,
		trip.Status, domain.TripStatusCancelled,
		repository.TransitionFields{CancelledAt: &now, CancellationFee: &fee})
	if err != nil {
		return nil, transitionError(err)
	}

	if s.observer != nil {
		s.observer.TripCancelled()
	}

	return cancelled, nil
}

// RefundTrip refunds the payment of a COMPLETED trip.
func (s *TripService) RefundTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusCompleted {
		return nil, ErrInvalidTransition
	}

	payment, err := s.payments.GetByTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, client.ErrPaymentNotFound) {
			return nil, ErrNoPaymentFound
		}
		return nil, upstreamError(err)
	}

	if payment.Status != domain.PaymentStatusSuccess {
		return nil, ErrNoPaymentFound
	}

	refunded, err := s.payments.Refund(ctx, payment.ID)
	if err != nil {
		if errors.Is(err, client.ErrPaymentNotFound) {
			return nil, ErrNoPaymentFound
		}
		return nil, upstreamError(err)
	}

	if s.observer != nil {
		s.observer.RefundIssued()
	}

	return refunded, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, tripID)
}

// GetAllTrips retrieves the most recent trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// CalculateFare returns a fare quote without touching any trip.
func (s *TripService) CalculateFare(distanceKm float64) (*domain.FareQuote, error) {
	return s.fare.Calculate(distanceKm)
}

// logOrphanedReservation records a driver flag left flipped after a
// failed assignment. There is no lease to expire it, so the record is
// the only trace an operator gets.
func (s *TripService) logOrphanedReservation(ctx context.Context, tripID, driverID string, cause error) {
	if s.log == nil {
		return
	}
	s.log.WithFields(logrus.Fields{
		"trip_id":        tripID,
		"driver_id":      driverID,
		"correlation_id": middleware.CorrelationIDFromContext(ctx),
	}).WithError(cause).Warn("driver reserved but assignment did not commit")
}

// transitionError maps a lost conditional write to ErrConflict and
// passes everything else through.
func transitionError(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return ErrConflict
	}
	return err
}

// upstreamError folds collaborator transport failures into the
// service's upstream sentinel.
func upstreamError(err error) error {
	if errors.Is(err, client.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return err
}
