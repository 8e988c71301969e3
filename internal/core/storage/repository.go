package storage

import (
	"context"
	"time"

	v1 "github.com/aevon-lab/geopresence/internal/api/v1"
)

// PresenceStore is the TTL-gated geospatial index of currently active devices.
//
// A device is visible iff its TTL marker exists. The geo entry may outlive the
// marker until Reconcile prunes it; readers never return such entries.
type PresenceStore interface {
	// Upsert overwrites the device's position, TTL marker and metadata.
	// Returns true when the device was not already in the geo index.
	Upsert(ctx context.Context, ping *v1.DevicePing, ttl time.Duration) (bool, error)

	// Get returns nil, nil when the device has no live TTL marker.
	Get(ctx context.Context, deviceID string) (*v1.DevicePing, error)

	// QueryNearby returns live devices within radiusMeters, nearest first.
	QueryNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]v1.NearbyDevice, error)

	// Reconcile physically removes geo entries whose TTL marker is gone.
	// Safe to run concurrently with Upsert; returns the number removed, which is
	// a partial count when err is non-nil.
	Reconcile(ctx context.Context) (int, error)

	// Indexed is the number of entries physically present in the geo index,
	// live or pending cleanup.
	Indexed(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is the number of seconds until the oldest attempt leaves the
	// window. Zero when allowed.
	RetryAfter int
	// Count is the number of attempts in the window before this one.
	Count int
	// Remaining is the number of admissions left after this one.
	Remaining int
}

// RateLimiter is a per-key sliding-window admission controller.
type RateLimiter interface {
	Admit(ctx context.Context, key string, now time.Time) (Decision, error)
	Remaining(ctx context.Context, key string, now time.Time) (int, error)
}
