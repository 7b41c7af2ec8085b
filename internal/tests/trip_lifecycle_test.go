package tests

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"trips/internal/domain"
	"trips/internal/metrics"
	"trips/internal/service"
)

// fixture bundles the collaborators a TripService test needs.
type fixture struct {
	tripRepo *MockTripRepository
	drivers  *MockDriverDirectory
	payments *MockPaymentGateway
	counters *metrics.Counters
	service  *service.TripService
}

func newFixture(clock time.Time, drivers ...*domain.Driver) *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		tripRepo: NewMockTripRepository(),
		drivers:  NewMockDriverDirectory(drivers...),
		payments: NewMockPaymentGateway(),
		counters: metrics.NewCounters(),
	}
	f.service = service.NewTripService(
		f.tripRepo,
		f.drivers,
		f.payments,
		service.NewFareCalculatorWithClock(fixedClock(clock)),
		f.counters,
		logger,
	)
	return f
}

func (f *fixture) addTrip(id string, status domain.TripStatus) *domain.Trip {
	trip := &domain.Trip{
		ID:          id,
		RiderID:     "rider-1",
		PickupZone:  "A",
		DropZone:    "B",
		Status:      status,
		RequestedAt: time.Now(),
	}
	if status == domain.TripStatusAccepted {
		trip.DriverID = "driver-1"
		trip.AcceptedAt = time.Now()
	}
	f.tripRepo.AddTrip(trip)
	return trip
}

// ──────────────────────────────────────────────
// CREATE
// ──────────────────────────────────────────────

func TestCreateTrip_RequiresRiderAndZones(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)

	cases := []service.CreateTripRequest{
		{PickupZone: "A", DropZone: "B"},
		{RiderID: "rider-1", DropZone: "B"},
		{RiderID: "rider-1", PickupZone: "A"},
	}

	for _, req := range cases {
		if _, err := f.service.CreateTrip(context.Background(), req); err == nil {
			t.Errorf("expected validation error for %+v", req)
		}
	}

	if f.tripRepo.CreateCallCount != 0 {
		t.Error("no store write should happen on validation failure")
	}
}

func TestCreateTrip_StartsRequested(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)

	trip, err := f.service.CreateTrip(context.Background(), service.CreateTripRequest{
		RiderID:    "rider-1",
		PickupZone: "A",
		DropZone:   "B",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusRequested {
		t.Errorf("expected REQUESTED, got %s", trip.Status)
	}
	if trip.ID == "" {
		t.Error("expected an id")
	}
	if trip.RequestedAt.IsZero() {
		t.Error("expected requested_at to be set")
	}
	if trip.DriverID != "" {
		t.Error("no driver should be bound at creation")
	}
	if got := f.counters.Snapshot()["trips_created_total"]; got != 1 {
		t.Errorf("expected trips_created_total 1, got %d", got)
	}
}

// ──────────────────────────────────────────────
// ASSIGN + ACCEPT
// ──────────────────────────────────────────────

func TestAssignAndAccept_ReservesFirstActiveDriver(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon,
		&domain.Driver{ID: "D1", Name: "Alice", IsActive: true},
		&domain.Driver{ID: "D2", Name: "Bob", IsActive: true},
	)
	f.addTrip("trip-1", domain.TripStatusRequested)

	trip, err := f.service.AssignAndAccept(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", trip.Status)
	}
	if trip.DriverID != "D1" {
		t.Errorf("expected first active driver D1, got %q", trip.DriverID)
	}
	if trip.AssignedAt.IsZero() || trip.AcceptedAt.IsZero() {
		t.Error("expected assigned_at and accepted_at to be set")
	}

	// The reserved driver is no longer active; the second one is untouched.
	if f.drivers.GetDriver("D1").IsActive {
		t.Error("expected D1 to be marked inactive")
	}
	if !f.drivers.GetDriver("D2").IsActive {
		t.Error("expected D2 to stay active")
	}
}

func TestAssignAndAccept_NoActiveDrivers(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon,
		&domain.Driver{ID: "D1", IsActive: false},
	)
	f.addTrip("trip-1", domain.TripStatusRequested)

	_, err := f.service.AssignAndAccept(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrNoDriversAvailable) {
		t.Fatalf("expected ErrNoDriversAvailable, got %v", err)
	}

	stored := f.tripRepo.GetTrip("trip-1")
	if stored.Status != domain.TripStatusRequested {
		t.Errorf("trip should stay REQUESTED, got %s", stored.Status)
	}
	if stored.DriverID != "" {
		t.Errorf("no driver should be bound, got %q", stored.DriverID)
	}
}

func TestAssignAndAccept_DirectoryUnreachable(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.drivers.ListError = errors.New("connection refused")
	f.addTrip("trip-1", domain.TripStatusRequested)

	if _, err := f.service.AssignAndAccept(context.Background(), "trip-1"); err == nil {
		t.Fatal("expected an error")
	}

	stored := f.tripRepo.GetTrip("trip-1")
	if stored.Status != domain.TripStatusRequested || stored.DriverID != "" {
		t.Error("trip must not be mutated when no driver can be reserved")
	}
}

func TestAssignAndAccept_RejectsNonRequested(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon,
		&domain.Driver{ID: "D1", IsActive: true},
	)
	f.addTrip("trip-1", domain.TripStatusAccepted)

	_, err := f.service.AssignAndAccept(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// Precondition failure happens before any directory call.
	if f.drivers.SetActiveCallCount != 0 {
		t.Error("no driver should be reserved")
	}
}

// ──────────────────────────────────────────────
// ACCEPT (DIRECT)
// ──────────────────────────────────────────────

func TestAcceptTrip_FromRequested(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusRequested)

	trip, err := f.service.AcceptTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", trip.Status)
	}
	if trip.AcceptedAt.IsZero() {
		t.Error("expected accepted_at to be set")
	}
}

func TestAcceptTrip_RejectsIllegalEdges(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)

	for i, status := range []domain.TripStatus{
		domain.TripStatusAccepted,
		domain.TripStatusCompleted,
		domain.TripStatusCancelled,
	} {
		id := "trip-" + string(status)
		f.addTrip(id, status)

		if _, err := f.service.AcceptTrip(context.Background(), id); !errors.Is(err, service.ErrInvalidTransition) {
			t.Errorf("case %d: expected ErrInvalidTransition, got %v", i, err)
		}

		if stored := f.tripRepo.GetTrip(id); stored.Status != status {
			t.Errorf("case %d: stored status changed to %s", i, stored.Status)
		}
	}
}

// ──────────────────────────────────────────────
// COMPLETE + CHARGE
// ──────────────────────────────────────────────

func TestCompleteTrip_PeakFareAndCharge(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayPeak)
	f.addTrip("trip-1", domain.TripStatusAccepted)

	result, err := f.service.CompleteTrip(context.Background(), service.CompleteTripRequest{
		TripID:     "trip-1",
		DistanceKm: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Trip.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", result.Trip.Status)
	}
	if result.Trip.TotalFare != 255.00 {
		t.Errorf("expected total fare 255.00, got %v", result.Trip.TotalFare)
	}
	if result.Trip.SurgeMultiplier != 1.5 {
		t.Errorf("expected surge 1.5, got %v", result.Trip.SurgeMultiplier)
	}
	if result.Trip.CompletedAt.IsZero() {
		t.Error("expected completed_at to be set")
	}
	if result.PaymentError != nil {
		t.Errorf("unexpected payment error: %v", result.PaymentError)
	}
	if result.Payment == nil || result.Payment.Amount != 255.00 {
		t.Errorf("expected a 255.00 charge, got %+v", result.Payment)
	}
	if got := f.counters.Snapshot()["payments_success_total"]; got != 1 {
		t.Errorf("expected payments_success_total 1, got %d", got)
	}
}

func TestCompleteTrip_ChargeFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayPeak)
	f.payments.ChargeError = errors.New("payment service unreachable")
	f.addTrip("trip-1", domain.TripStatusAccepted)

	result, err := f.service.CompleteTrip(context.Background(), service.CompleteTripRequest{
		TripID:     "trip-1",
		DistanceKm: 12,
	})
	if err != nil {
		t.Fatalf("completion must not fail on charge errors, got %v", err)
	}

	if result.Trip.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", result.Trip.Status)
	}
	if result.PaymentError == nil {
		t.Error("expected payment_error to be attached")
	}

	stored := f.tripRepo.GetTrip("trip-1")
	if stored.Status != domain.TripStatusCompleted || stored.TotalFare != 255.00 {
		t.Errorf("completion write should have committed, got %+v", stored)
	}
	if got := f.counters.Snapshot()["payments_failed_total"]; got != 1 {
		t.Errorf("expected payments_failed_total 1, got %d", got)
	}
}

func TestCompleteTrip_RejectsNonAccepted(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusRequested)

	_, err := f.service.CompleteTrip(context.Background(), service.CompleteTripRequest{
		TripID:     "trip-1",
		DistanceKm: 5,
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if f.payments.ChargeCallCount != 0 {
		t.Error("no charge should be attempted")
	}
}

func TestCompleteTrip_RejectsInvalidDistance(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusAccepted)

	_, err := f.service.CompleteTrip(context.Background(), service.CompleteTripRequest{
		TripID:     "trip-1",
		DistanceKm: -1,
	})
	if !errors.Is(err, service.ErrInvalidDistance) {
		t.Fatalf("expected ErrInvalidDistance, got %v", err)
	}

	if f.tripRepo.TransitionCallCount != 0 {
		t.Error("validation failures must not touch the store")
	}
}

// ──────────────────────────────────────────────
// CANCEL
// ──────────────────────────────────────────────

func TestCancelTrip_FromRequestedHasNoFee(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusRequested)

	trip, err := f.service.CancelTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", trip.Status)
	}
	if trip.CancellationFee != 0 {
		t.Errorf("expected no fee, got %v", trip.CancellationFee)
	}
	if trip.CancelledAt.IsZero() {
		t.Error("expected cancelled_at to be set")
	}
}

func TestCancelTrip_FromAcceptedChargesFee(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusAccepted)

	trip, err := f.service.CancelTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.CancellationFee != 5 {
		t.Errorf("expected fee 5, got %v", trip.CancellationFee)
	}
}

func TestCancelTrip_AlreadyCancelledIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusRequested)

	first, err := f.service.CancelTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writesAfterFirst := f.tripRepo.TransitionCallCount

	second, err := f.service.CancelTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("second cancel must be a no-op, got %v", err)
	}

	if f.tripRepo.TransitionCallCount != writesAfterFirst {
		t.Error("second cancel must not issue another store write")
	}
	if first.Status != second.Status || !first.CancelledAt.Equal(second.CancelledAt) || first.CancellationFee != second.CancellationFee {
		t.Errorf("expected identical state, got %+v and %+v", first, second)
	}
}

func TestCancelTrip_RejectsCompleted(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusCompleted)

	if _, err := f.service.CancelTrip(context.Background(), "trip-1"); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// ──────────────────────────────────────────────
// TERMINAL-STATE INVARIANT
// ──────────────────────────────────────────────

func TestTerminalTimestampsAreExclusive(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayPeak,
		&domain.Driver{ID: "D1", IsActive: true},
	)

	// One trip runs to completion, one gets cancelled.
	completed := f.addTrip("trip-done", domain.TripStatusAccepted)
	cancelled := f.addTrip("trip-gone", domain.TripStatusRequested)

	if _, err := f.service.CompleteTrip(context.Background(), service.CompleteTripRequest{
		TripID: completed.ID, DistanceKm: 3,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.CancelTrip(context.Background(), cancelled.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{completed.ID, cancelled.ID} {
		trip := f.tripRepo.GetTrip(id)
		hasCompleted := !trip.CompletedAt.IsZero()
		hasCancelled := !trip.CancelledAt.IsZero()
		if hasCompleted == hasCancelled {
			t.Errorf("trip %s: exactly one terminal timestamp expected, got completed=%v cancelled=%v",
				id, hasCompleted, hasCancelled)
		}
	}
}
