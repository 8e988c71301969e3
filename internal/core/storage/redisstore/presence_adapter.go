package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	v1 "github.com/aevon-lab/geopresence/internal/api/v1"
	"github.com/aevon-lab/geopresence/internal/core/storage"
	"github.com/redis/go-redis/v9"
)

const (
	defaultOpTimeout   = 2 * time.Second
	defaultScanBatch   = 500
	defaultPresenceKey = "location_pings"

	// maxIndexLatitude is the limit of the geo set's Web Mercator encoding.
	// GEOADD rejects anything beyond it.
	maxIndexLatitude = 85.05112878
)

var _ storage.PresenceStore = (*PresenceAdapter)(nil)

// PresenceAdapter implements storage.PresenceStore on a Redis geo set.
//
// The geo set has no per-member expiry, so each device also gets a TTL marker
// key. The marker is the only source of truth for visibility; Reconcile prunes
// geo members whose marker has expired.
type PresenceAdapter struct {
	client    redis.UniversalClient
	geoKey    string
	opTimeout time.Duration
	scanBatch int64
}

// NewPresenceAdapter creates a presence store under keyPrefix.
// Every Redis round trip is bounded by opTimeout.
func NewPresenceAdapter(client redis.UniversalClient, keyPrefix string, opTimeout time.Duration) *PresenceAdapter {
	if client == nil {
		panic("redisstore: client must not be nil")
	}
	if keyPrefix == "" {
		keyPrefix = defaultPresenceKey
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &PresenceAdapter{
		client:    client,
		geoKey:    keyPrefix,
		opTimeout: opTimeout,
		scanBatch: defaultScanBatch,
	}
}

func (a *PresenceAdapter) ttlKey(deviceID string) string {
	return a.geoKey + ttlKeySegment + deviceID
}

func (a *PresenceAdapter) metaKey(deviceID string) string {
	return a.geoKey + metaKeySegment + deviceID
}

// Upsert writes the geo entry, TTL marker and metadata in one MULTI/EXEC, so a
// reader never sees a live marker without matching metadata.
// Last write wins: ObservedAt is stored but not compared.
func (a *PresenceAdapter) Upsert(ctx context.Context, ping *v1.DevicePing, ttl time.Duration) (bool, error) {
	if err := ping.Validate(); err != nil {
		return false, err
	}
	if ttl <= 0 {
		return false, fmt.Errorf("ttl must be > 0, got %s", ttl)
	}

	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	observedAt := ping.ObservedAt.UTC().Format(time.RFC3339Nano)
	metaKey := a.metaKey(ping.DeviceID)

	var added *redis.IntCmd
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.GeoAdd(ctx, a.geoKey, &redis.GeoLocation{
			Name:      ping.DeviceID,
			Longitude: ping.Longitude,
			Latitude:  indexLatitude(ping.Latitude),
		})
		pipe.Set(ctx, a.ttlKey(ping.DeviceID), observedAt, ttl)
		pipe.HSet(ctx, metaKey,
			"accuracy", formatFloat(ping.Accuracy),
			"timestamp", observedAt,
			"latitude", formatFloat(ping.Latitude),
			"longitude", formatFloat(ping.Longitude),
		)
		pipe.Expire(ctx, metaKey, ttl)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert device %s: %w", ping.DeviceID, err)
	}

	return added.Val() > 0, nil
}

// Get gates strictly on the TTL marker. Metadata is used for coordinates when
// present, otherwise the geo position is decoded.
func (a *PresenceAdapter) Get(ctx context.Context, deviceID string) (*v1.DevicePing, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	var (
		marker *redis.SliceCmd
		pos    *redis.GeoPosCmd
		meta   *redis.MapStringStringCmd
	)
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// MGET reports a missing key as nil instead of failing the pipeline.
		marker = pipe.MGet(ctx, a.ttlKey(deviceID))
		pos = pipe.GeoPos(ctx, a.geoKey, deviceID)
		meta = pipe.HGetAll(ctx, a.metaKey(deviceID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get device %s: %w", deviceID, err)
	}

	markerVal := marker.Val()
	if len(markerVal) == 0 || markerVal[0] == nil {
		return nil, nil
	}

	ping := &v1.DevicePing{DeviceID: deviceID}
	if s, ok := markerVal[0].(string); ok {
		ping.ObservedAt, _ = time.Parse(time.RFC3339Nano, s)
	}

	fields := meta.Val()
	lat, latErr := strconv.ParseFloat(fields["latitude"], 64)
	lon, lonErr := strconv.ParseFloat(fields["longitude"], 64)
	switch {
	case latErr == nil && lonErr == nil:
		ping.Latitude, ping.Longitude = lat, lon
	case len(pos.Val()) > 0 && pos.Val()[0] != nil:
		ping.Latitude, ping.Longitude = pos.Val()[0].Latitude, pos.Val()[0].Longitude
	default:
		slog.Warn("[Presence] Live marker without position", "device_id", deviceID)
		return nil, nil
	}

	if acc, err := strconv.ParseFloat(fields["accuracy"], 64); err == nil {
		ping.Accuracy = acc
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["timestamp"]); err == nil {
		ping.ObservedAt = ts
	}

	return ping, nil
}

// QueryNearby runs a radius search and drops hits whose marker has expired.
func (a *PresenceAdapter) QueryNearby(ctx context.Context, lat, lon, radiusMeters float64) ([]v1.NearbyDevice, error) {
	if err := v1.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if !(radiusMeters > 0) {
		return nil, fmt.Errorf("radius must be > 0, got %v", radiusMeters)
	}

	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	locations, err := a.client.GeoRadius(ctx, a.geoKey, lon, indexLatitude(lat), &redis.GeoRadiusQuery{
		Radius:    radiusMeters,
		Unit:      "m",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("radius query: %w", err)
	}

	nearby := make([]v1.NearbyDevice, 0, len(locations))
	if len(locations) == 0 {
		return nearby, nil
	}

	markers := make([]*redis.IntCmd, len(locations))
	_, err = a.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, loc := range locations {
			markers[i] = pipe.Exists(ctx, a.ttlKey(loc.Name))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check ttl markers: %w", err)
	}

	for i, loc := range locations {
		if markers[i].Val() == 0 {
			continue
		}
		nearby = append(nearby, v1.NearbyDevice{
			DeviceID:  loc.Name,
			Distance:  loc.Dist,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}

	return nearby, nil
}

// Reconcile walks the geo set in ZSCAN batches and prunes members without a
// TTL marker. The scan completes before anything is removed, so deletes never
// move the cursor past unvisited members. Idempotent; the count is partial
// when an error is returned.
func (a *PresenceAdapter) Reconcile(ctx context.Context) (int, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		page, next, err := a.scan(ctx, cursor)
		if err != nil {
			return 0, fmt.Errorf("scan presence index: %w", err)
		}
		ids = append(ids, page...)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	removed := 0
	for start := 0; start < len(ids); start += int(a.scanBatch) {
		end := min(start+int(a.scanBatch), len(ids))
		n, err := a.pruneExpired(ctx, ids[start:end])
		removed += n
		if err != nil {
			return removed, fmt.Errorf("prune expired devices: %w", err)
		}
	}

	if removed > 0 {
		slog.Info("[Presence] Cleaned up expired location pings", "removed", removed, "scanned", len(ids))
	}
	return removed, nil
}

// scan returns the device ids of one ZSCAN page.
func (a *PresenceAdapter) scan(ctx context.Context, cursor uint64) ([]string, uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	pairs, next, err := a.client.ZScan(ctx, a.geoKey, cursor, "", a.scanBatch).Result()
	if err != nil {
		return nil, 0, err
	}

	// ZSCAN replies with member, score, member, score, ...
	ids := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		ids = append(ids, pairs[i])
	}
	return ids, next, nil
}

func (a *PresenceAdapter) pruneExpired(ctx context.Context, deviceIDs []string) (int, error) {
	if len(deviceIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()

	keys := make([]string, 0, 1+2*len(deviceIDs))
	args := make([]interface{}, 0, len(deviceIDs))
	keys = append(keys, a.geoKey)
	for _, id := range deviceIDs {
		keys = append(keys, a.ttlKey(id), a.metaKey(id))
		args = append(args, id)
	}

	return pruneExpiredScript.Run(ctx, a.client, keys, args...).Int()
}

// Indexed returns the number of members physically in the geo set.
func (a *PresenceAdapter) Indexed(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()
	return a.client.ZCard(ctx, a.geoKey).Result()
}

// Ping reports whether the substrate is reachable.
func (a *PresenceAdapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.opTimeout)
	defer cancel()
	return a.client.Ping(ctx).Err()
}

// indexLatitude clamps lat into the range the geo encoding accepts. Only the
// index entry is clamped; metadata keeps the exact value.
func indexLatitude(lat float64) float64 {
	if lat > maxIndexLatitude {
		return maxIndexLatitude
	}
	if lat < -maxIndexLatitude {
		return -maxIndexLatitude
	}
	return lat
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
