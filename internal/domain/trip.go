package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested TripStatus = "REQUESTED"
	TripStatusAssigned  TripStatus = "ASSIGNED"
	TripStatusAccepted  TripStatus = "ACCEPTED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// legalEdges holds the allowed status transitions. Status only changes
// through the trip service, never directly by callers.
var legalEdges = map[TripStatus][]TripStatus{
	TripStatusRequested: {TripStatusAccepted, TripStatusCancelled},
	TripStatusAccepted:  {TripStatusCompleted, TripStatusCancelled},
}

// CanTransitionTo reports whether the edge from s to next is legal.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, allowed := range legalEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Trip represents a single ride request tracked from request to
// completion or cancellation.
type Trip struct {
	ID         string
	RiderID    string
	DriverID   string // empty until a driver is bound; set exactly once
	PickupZone string
	DropZone   string
	Status     TripStatus

	RequestedAt time.Time
	AssignedAt  time.Time
	AcceptedAt  time.Time
	CompletedAt time.Time
	CancelledAt time.Time

	// Fare fields, set together when the trip completes.
	DistanceKm      float64
	BaseFare        float64
	SurgeMultiplier float64
	TotalFare       float64

	// CancellationFee is charged only when cancelling an ACCEPTED trip.
	CancellationFee float64
}
