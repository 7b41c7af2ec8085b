package tests

import (
	"context"
	"errors"
	"testing"

	"trips/internal/domain"
	"trips/internal/service"
)

func TestRefundTrip_RefundsSuccessfulPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusCompleted)
	f.payments.AddPayment(&domain.Payment{
		ID:     "payment-1",
		TripID: "trip-1",
		Amount: 255,
		Status: domain.PaymentStatusSuccess,
	})

	payment, err := f.service.RefundTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != domain.PaymentStatusRefunded {
		t.Errorf("expected REFUNDED, got %s", payment.Status)
	}
	if f.payments.RefundCallCount != 1 {
		t.Errorf("expected 1 refund call, got %d", f.payments.RefundCallCount)
	}
	if got := f.counters.Snapshot()["refunds_issued_total"]; got != 1 {
		t.Errorf("expected refunds_issued_total 1, got %d", got)
	}
}

func TestRefundTrip_RejectsNonCompleted(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusRequested)

	_, err := f.service.RefundTrip(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if f.payments.RefundCallCount != 0 {
		t.Error("no refund should be attempted")
	}
}

func TestRefundTrip_NoPaymentRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusCompleted)

	_, err := f.service.RefundTrip(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrNoPaymentFound) {
		t.Fatalf("expected ErrNoPaymentFound, got %v", err)
	}
}

func TestRefundTrip_FailedChargeIsNotRefundable(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)
	f.addTrip("trip-1", domain.TripStatusCompleted)
	f.payments.AddPayment(&domain.Payment{
		ID:     "payment-1",
		TripID: "trip-1",
		Status: domain.PaymentStatusFailed,
	})

	_, err := f.service.RefundTrip(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrNoPaymentFound) {
		t.Fatalf("expected ErrNoPaymentFound, got %v", err)
	}

	if f.payments.RefundCallCount != 0 {
		t.Error("a failed charge must not be refunded")
	}
}

func TestRefundTrip_UnknownTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(mondayNoon)

	if _, err := f.service.RefundTrip(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for an unknown trip")
	}
}
