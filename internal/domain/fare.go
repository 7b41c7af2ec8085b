package domain

// FareQuote is the breakdown of a fare calculation. Quotes are
// ephemeral: computed fresh on every request and never persisted on
// their own.
type FareQuote struct {
	DistanceKm         float64
	BaseFare           float64
	PerKmRate          float64
	SurgeMultiplier    float64
	MinimumFareApplied bool
	CalculatedFare     float64
	Currency           string
}
