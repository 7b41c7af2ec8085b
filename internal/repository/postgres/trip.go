package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trips/internal/domain"
	"trips/internal/repository"
)

const tripColumns = `id, rider_id, driver_id, pickup_zone, drop_zone, status,
	requested_at, assigned_at, accepted_at, completed_at, cancelled_at,
	distance_km, base_fare, surge_multiplier, total_fare, cancellation_fee`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, rider_id, pickup_zone, drop_zone, status, requested_at, cancellation_fee)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RiderID,
		trip.PickupZone,
		trip.DropZone,
		trip.Status,
		trip.RequestedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAll retrieves the most recent trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY requested_at DESC LIMIT 50`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// AssignDriver binds a driver to a trip, setting driver_id and
// assigned_at only. The status change is a separate conditional write.
func (r *TripRepository) AssignDriver(ctx context.Context, id, driverID string, at time.Time) (*domain.Trip, error) {
	query := `
		UPDATE trips
		SET driver_id = $2, assigned_at = $3
		WHERE id = $1 AND driver_id IS NULL
		RETURNING ` + tripColumns

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id, driverID, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the trip does not exist or a driver is already bound.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	return trip, nil
}

// Transition moves a trip from one status to another in a single
// conditional write guarded by the expected current status.
func (r *TripRepository) Transition(ctx context.Context, id string, from, to domain.TripStatus, fields repository.TransitionFields) (*domain.Trip, error) {
	query := `
		UPDATE trips
		SET status = $3,
			accepted_at      = COALESCE($4, accepted_at),
			completed_at     = COALESCE($5, completed_at),
			cancelled_at     = COALESCE($6, cancelled_at),
			distance_km      = COALESCE($7, distance_km),
			base_fare        = COALESCE($8, base_fare),
			surge_multiplier = COALESCE($9, surge_multiplier),
			total_fare       = COALESCE($10, total_fare),
			cancellation_fee = COALESCE($11, cancellation_fee)
		WHERE id = $1 AND status = $2
		RETURNING ` + tripColumns

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query,
		id,
		from,
		to,
		nullTime(fields.AcceptedAt),
		nullTime(fields.CompletedAt),
		nullTime(fields.CancelledAt),
		nullFloat(fields.DistanceKm),
		nullFloat(fields.BaseFare),
		nullFloat(fields.SurgeMultiplier),
		nullFloat(fields.TotalFare),
		nullFloat(fields.CancellationFee),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing row from a lost race.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	return trip, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID sql.NullString
	var assignedAt, acceptedAt, completedAt, cancelledAt sql.NullTime
	var distanceKm, baseFare, surgeMultiplier, totalFare sql.NullFloat64

	err := row.Scan(
		&trip.ID,
		&trip.RiderID,
		&driverID,
		&trip.PickupZone,
		&trip.DropZone,
		&trip.Status,
		&trip.RequestedAt,
		&assignedAt,
		&acceptedAt,
		&completedAt,
		&cancelledAt,
		&distanceKm,
		&baseFare,
		&surgeMultiplier,
		&totalFare,
		&trip.CancellationFee,
	)
	if err != nil {
		return nil, err
	}

	trip.DriverID = driverID.String
	if assignedAt.Valid {
		trip.AssignedAt = assignedAt.Time
	}
	if acceptedAt.Valid {
		trip.AcceptedAt = acceptedAt.Time
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}
	trip.DistanceKm = distanceKm.Float64
	trip.BaseFare = baseFare.Float64
	trip.SurgeMultiplier = surgeMultiplier.Float64
	trip.TotalFare = totalFare.Float64

	return &trip, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
