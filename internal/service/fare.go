package service

import (
	"math"
	"time"

	"trips/internal/domain"
)

const (
	baseFare    = 50.0
	perKmRate   = 10.0
	minimumFare = 75.0
	currency    = "INR"

	peakSurge    = 1.5
	offPeakSurge = 1.2
)

// FareCalculator computes fare quotes from distance. Surge depends on
// the time of day, so the clock is injectable for deterministic tests.
type FareCalculator struct {
	now func() time.Time
}

// NewFareCalculator creates a calculator using the system clock.
func NewFareCalculator() *FareCalculator {
	return &FareCalculator{now: time.Now}
}

// NewFareCalculatorWithClock creates a calculator with a fixed clock.
func NewFareCalculatorWithClock(now func() time.Time) *FareCalculator {
	return &FareCalculator{now: now}
}

// Calculate returns the fare quote for a trip of the given distance at
// the current time. Display values are rounded to 2 decimal places;
// intermediate computation is not.
func (f *FareCalculator) Calculate(distanceKm float64) (*domain.FareQuote, error) {
	if distanceKm <= 0 {
		return nil, ErrInvalidDistance
	}

	surge := f.surgeMultiplier(f.now())
	rawFare := (baseFare + perKmRate*distanceKm) * surge

	calculated := rawFare
	minimumApplied := rawFare < minimumFare
	if minimumApplied {
		calculated = minimumFare
	}

	return &domain.FareQuote{
		DistanceKm:         round2(distanceKm),
		BaseFare:           baseFare,
		PerKmRate:          perKmRate,
		SurgeMultiplier:    surge,
		MinimumFareApplied: minimumApplied,
		CalculatedFare:     round2(calculated),
		Currency:           currency,
	}, nil
}

// surgeMultiplier determines the multiplier for a point in time. Peak
// hours take precedence over night and weekend rates.
func (f *FareCalculator) surgeMultiplier(at time.Time) float64 {
	hour := at.Hour()

	peak := (hour >= 8 && hour < 10) || (hour >= 18 && hour < 21)
	if peak {
		return peakSurge
	}

	night := hour >= 22 || hour < 6
	weekend := at.Weekday() == time.Saturday || at.Weekday() == time.Sunday
	if night || weekend {
		return offPeakSurge
	}

	return 1.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
