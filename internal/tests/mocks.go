package tests

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"trips/internal/client"
	"trips/internal/domain"
	"trips/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is an in-memory implementation of TripRepository.
// Transition applies the same conditional-write contract the Postgres
// implementation has, under a single lock, so races between concurrent
// transitions resolve the same way.
type MockTripRepository struct {
	mu    sync.Mutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount     int32
	TransitionCallCount int32

	// Error injection
	CreateError     error
	TransitionError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

// AddTrip inserts a trip directly, bypassing counters.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *trip
	m.trips[trip.ID] = &copied
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *trip
	m.trips[trip.ID] = &copied
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *trip
	return &copied, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, trip := range m.trips {
		copied := *trip
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockTripRepository) AssignDriver(ctx context.Context, id, driverID string, at time.Time) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if trip.DriverID != "" {
		return nil, repository.ErrConflict
	}
	trip.DriverID = driverID
	trip.AssignedAt = at
	copied := *trip
	return &copied, nil
}

func (m *MockTripRepository) Transition(ctx context.Context, id string, from, to domain.TripStatus, fields repository.TransitionFields) (*domain.Trip, error) {
	atomic.AddInt32(&m.TransitionCallCount, 1)
	if m.TransitionError != nil {
		return nil, m.TransitionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if trip.Status != from {
		return nil, repository.ErrConflict
	}

	trip.Status = to
	if fields.AcceptedAt != nil {
		trip.AcceptedAt = *fields.AcceptedAt
	}
	if fields.CompletedAt != nil {
		trip.CompletedAt = *fields.CompletedAt
	}
	if fields.CancelledAt != nil {
		trip.CancelledAt = *fields.CancelledAt
	}
	if fields.DistanceKm != nil {
		trip.DistanceKm = *fields.DistanceKm
	}
	if fields.BaseFare != nil {
		trip.BaseFare = *fields.BaseFare
	}
	if fields.SurgeMultiplier != nil {
		trip.SurgeMultiplier = *fields.SurgeMultiplier
	}
	if fields.TotalFare != nil {
		trip.TotalFare = *fields.TotalFare
	}
	if fields.CancellationFee != nil {
		trip.CancellationFee = *fields.CancellationFee
	}

	copied := *trip
	return &copied, nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil
	}
	copied := *trip
	return &copied
}

// Ensure MockTripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*MockTripRepository)(nil)

// ──────────────────────────────────────────────
// MOCK DRIVER DIRECTORY
// ──────────────────────────────────────────────

// MockDriverDirectory is an in-memory driver directory.
type MockDriverDirectory struct {
	mu      sync.Mutex
	drivers []*domain.Driver

	SetActiveCallCount int32

	ListError      error
	SetActiveError error
}

// NewMockDriverDirectory creates a new mock driver directory.
func NewMockDriverDirectory(drivers ...*domain.Driver) *MockDriverDirectory {
	return &MockDriverDirectory{drivers: drivers}
}

func (m *MockDriverDirectory) ListActive(ctx context.Context) ([]domain.Driver, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var active []domain.Driver
	for _, d := range m.drivers {
		if d.IsActive {
			active = append(active, *d)
		}
	}
	return active, nil
}

func (m *MockDriverDirectory) SetActive(ctx context.Context, driverID string, active bool) error {
	atomic.AddInt32(&m.SetActiveCallCount, 1)
	if m.SetActiveError != nil {
		return m.SetActiveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.ID == driverID {
			d.IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

// GetDriver returns the driver for test assertions.
func (m *MockDriverDirectory) GetDriver(id string) *domain.Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.ID == id {
			copied := *d
			return &copied
		}
	}
	return nil
}

// Ensure MockDriverDirectory implements client.DriverDirectory.
var _ client.DriverDirectory = (*MockDriverDirectory)(nil)

// ──────────────────────────────────────────────
// MOCK PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockPaymentGateway is an in-memory payment service.
type MockPaymentGateway struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment // keyed by trip id
	nextID   int

	ChargeCallCount int32
	RefundCallCount int32

	// ChargeStatus is the status charges settle in. Defaults to SUCCESS.
	ChargeStatus domain.PaymentStatus

	ChargeError error
	LookupError error
	RefundError error
}

// NewMockPaymentGateway creates a new mock payment gateway.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		payments:     make(map[string]*domain.Payment),
		ChargeStatus: domain.PaymentStatusSuccess,
	}
}

// AddPayment stores an existing payment record for a trip.
func (m *MockPaymentGateway) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *payment
	m.payments[payment.TripID] = &copied
}

func (m *MockPaymentGateway) Charge(ctx context.Context, tripID string, amount float64, method domain.PaymentMethod) (*domain.Payment, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	if m.ChargeError != nil {
		return nil, m.ChargeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	payment := &domain.Payment{
		ID:     "payment-" + strconv.Itoa(m.nextID),
		TripID: tripID,
		Amount: amount,
		Method: method,
		Status: m.ChargeStatus,
	}
	m.payments[tripID] = payment
	copied := *payment
	return &copied, nil
}

func (m *MockPaymentGateway) GetByTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[tripID]
	if !ok {
		return nil, client.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (m *MockPaymentGateway) Refund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	atomic.AddInt32(&m.RefundCallCount, 1)
	if m.RefundError != nil {
		return nil, m.RefundError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.ID == paymentID {
			payment.Status = domain.PaymentStatusRefunded
			copied := *payment
			return &copied, nil
		}
	}
	return nil, client.ErrPaymentNotFound
}

// Ensure MockPaymentGateway implements client.PaymentGateway.
var _ client.PaymentGateway = (*MockPaymentGateway)(nil)
