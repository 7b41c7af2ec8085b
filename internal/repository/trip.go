package repository

import (
	"context"
	"time"

	"trips/internal/domain"
)

// TransitionFields carries the optional columns a status transition may
// set alongside the new status. Nil fields are left untouched.
type TransitionFields struct {
	AcceptedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	DistanceKm      *float64
	BaseFare        *float64
	SurgeMultiplier *float64
	TotalFare       *float64

	CancellationFee *float64
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves the most recent trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// AssignDriver binds a driver to a trip. It sets driver_id and
	// assigned_at only; the status change is a separate transition.
	AssignDriver(ctx context.Context, id, driverID string, at time.Time) (*domain.Trip, error)

	// Transition moves a trip from one status to another in a single
	// conditional write. It succeeds only if the row's status still
	// equals from at write time; otherwise it returns ErrConflict
	// (ErrNotFound if the row does not exist).
	Transition(ctx context.Context, id string, from, to domain.TripStatus, fields TransitionFields) (*domain.Trip, error)
}
