package ingestion

import (
	"errors"
	"fmt"

	v1 "github.com/aevon-lab/geopresence/internal/api/v1"
)

var (
	ErrInvalidDeviceID = errors.New("device_id cannot be empty")
	// ErrInvalidCoordinate is re-exported so callers only import this package.
	ErrInvalidCoordinate   = v1.ErrInvalidCoordinate
	ErrInvalidLocationData = errors.New("invalid location data")
	ErrInvalidQuery        = errors.New("invalid nearby query")
	ErrStoreUnavailable    = errors.New("presence store unavailable")
	ErrReconcileFailure    = errors.New("presence reconcile failed")
)

// RateLimitedError is returned when a device exhausted its window.
type RateLimitedError struct {
	DeviceID   string
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %ds", e.DeviceID, e.RetryAfter)
}

// storeUnavailable keeps the substrate error in the chain for logging while
// callers classify on ErrStoreUnavailable.
func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
