package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider id is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidTripID is returned when trip id is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidZone is returned when pickup or drop zone is empty.
	ErrInvalidZone = errors.New("pickup and drop zones are required")

	// ErrInvalidDistance is returned when distance_km is missing,
	// non-numeric, or not positive.
	ErrInvalidDistance = errors.New("valid distance_km is required")

	// ErrInvalidTransition is returned when the requested operation is
	// not a legal edge from the trip's current status.
	ErrInvalidTransition = errors.New("illegal trip status transition")

	// ErrConflict is returned when a concurrent transition on the same
	// trip won the conditional write.
	ErrConflict = errors.New("trip was modified by a concurrent request")

	// ErrNoDriversAvailable is returned when the driver directory has
	// no active driver to reserve.
	ErrNoDriversAvailable = errors.New("no drivers available")

	// ErrNoPaymentFound is returned when a refund is requested for a
	// trip without a successful charge.
	ErrNoPaymentFound = errors.New("no successful payment found for trip")

	// ErrUpstreamUnavailable is returned when a collaborator service is
	// unreachable or erroring.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
