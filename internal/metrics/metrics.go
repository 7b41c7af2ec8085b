// Package metrics provides the process-wide counters the trip service
// reports committed transitions to. Counters carry no persistence
// guarantee; they reset on restart.
package metrics

import "sync/atomic"

// Observer is notified by the trip service on each committed transition
// and payment outcome.
type Observer interface {
	TripCreated()
	TripAccepted()
	TripCompleted()
	TripCancelled()
	PaymentSucceeded()
	PaymentFailed()
	RefundIssued()
}

// Counters is an Observer backed by atomic counters.
type Counters struct {
	tripsCreated    atomic.Int64
	tripsAccepted   atomic.Int64
	tripsCompleted  atomic.Int64
	tripsCancelled  atomic.Int64
	paymentsSuccess atomic.Int64
	paymentsFailed  atomic.Int64
	refundsIssued   atomic.Int64
}

// NewCounters creates a zeroed counter set.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) TripCreated()      { c.tripsCreated.Add(1) }
func (c *Counters) TripAccepted()     { c.tripsAccepted.Add(1) }
func (c *Counters) TripCompleted()    { c.tripsCompleted.Add(1) }
func (c *Counters) TripCancelled()    { c.tripsCancelled.Add(1) }
func (c *Counters) PaymentSucceeded() { c.paymentsSuccess.Add(1) }
func (c *Counters) PaymentFailed()    { c.paymentsFailed.Add(1) }
func (c *Counters) RefundIssued()     { c.refundsIssued.Add(1) }

// Snapshot returns the current counter values keyed by metric name.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"trips_created_total":    c.tripsCreated.Load(),
		"trips_accepted_total":   c.tripsAccepted.Load(),
		"trips_completed_total":  c.tripsCompleted.Load(),
		"trips_cancelled_total":  c.tripsCancelled.Load(),
		"payments_success_total": c.paymentsSuccess.Load(),
		"payments_failed_total":  c.paymentsFailed.Load(),
		"refunds_issued_total":   c.refundsIssued.Load(),
	}
}

// Ensure Counters implements Observer.
var _ Observer = (*Counters)(nil)
