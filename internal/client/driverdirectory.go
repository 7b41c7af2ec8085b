package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trips/internal/domain"
)

// DriverDirectoryClient is the HTTP implementation of DriverDirectory.
type DriverDirectoryClient struct {
	http httpClient
}

// NewDriverDirectoryClient creates a driver directory client for the
// given base URL.
func NewDriverDirectoryClient(baseURL string, timeout time.Duration) *DriverDirectoryClient {
	return &DriverDirectoryClient{http: newHTTPClient(baseURL, timeout)}
}

type driverPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ListActive returns the drivers currently flagged active.
func (c *DriverDirectoryClient) ListActive(ctx context.Context) ([]domain.Driver, error) {
	var payload []driverPayload
	status, err := c.http.do(ctx, http.MethodGet, "/drivers", nil, &payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: listing drivers returned %d", ErrUnavailable, status)
	}

	var active []domain.Driver
	for _, d := range payload {
		if !d.IsActive {
			continue
		}
		active = append(active, domain.Driver{ID: d.ID, Name: d.Name, IsActive: true})
	}

	return active, nil
}

// SetActive requests a change to a driver's active flag.
func (c *DriverDirectoryClient) SetActive(ctx context.Context, driverID string, active bool) error {
	path := fmt.Sprintf("/drivers/%s?active=%t", driverID, active)
	status, err := c.http.do(ctx, http.MethodPatch, path, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: updating driver %s returned %d", ErrUnavailable, driverID, status)
	}

	return nil
}

// Ensure DriverDirectoryClient implements DriverDirectory.
var _ DriverDirectory = (*DriverDirectoryClient)(nil)
