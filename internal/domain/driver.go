package domain

// Driver represents a driver as observed through the driver directory
// service. The directory owns the active flag; this service only reads
// it and requests changes to it.
type Driver struct {
	ID       string
	Name     string
	IsActive bool
}
