package redisstore

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	v1 "github.com/aevon-lab/geopresence/internal/api/v1"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const coordTolerance = 1e-4

func newTestPresence(t *testing.T) (*PresenceAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPresenceAdapter(client, "location_pings", time.Second), mr
}

func ping(id string, lat, lon float64) *v1.DevicePing {
	return &v1.DevicePing{
		DeviceID:   id,
		Latitude:   lat,
		Longitude:  lon,
		Accuracy:   10.5,
		ObservedAt: time.Date(2026, 2, 8, 10, 30, 0, 0, time.UTC),
	}
}

func TestPresenceAdapter_UpsertThenGet(t *testing.T) {
	store, mr := newTestPresence(t)
	ctx := context.Background()

	stored, err := store.Upsert(ctx, ping("d1", 37.7749, -122.4194), time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "d1", got.DeviceID)
	require.InDelta(t, 37.7749, got.Latitude, coordTolerance)
	require.InDelta(t, -122.4194, got.Longitude, coordTolerance)
	require.Equal(t, 10.5, got.Accuracy)
	require.True(t, got.ObservedAt.Equal(time.Date(2026, 2, 8, 10, 30, 0, 0, time.UTC)))

	// marker and metadata share the ping TTL
	require.Equal(t, time.Minute, mr.TTL("location_pings:ttl:d1"))
	require.Equal(t, time.Minute, mr.TTL("location_pings:meta:d1"))
}

func TestPresenceAdapter_GetMissing(t *testing.T) {
	store, _ := newTestPresence(t)

	got, err := store.Get(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPresenceAdapter_ExpiredMarkerHidesDevice(t *testing.T) {
	store, mr := newTestPresence(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, ping("d1", 37.7749, -122.4194), time.Minute)
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)

	// geo entry is still physically present
	indexed, err := store.Indexed(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), indexed)

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	require.Nil(t, got)

	nearby, err := store.QueryNearby(ctx, 37.7749, -122.4194, 100)
	require.NoError(t, err)
	require.Empty(t, nearby)

	removed, err := store.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	indexed, err = store.Indexed(ctx)
	require.NoError(t, err)
	require.Zero(t, indexed)
}

func TestPresenceAdapter_GetGatesOnMarkerNotMetadata(t *testing.T) {
	store, mr := newTestPresence(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, ping("d1", 48.8566, 2.3522), time.Minute)
	require.NoError(t, err)

	// live marker, metadata gone: still visible, position decoded from the index
	mr.Del("location_pings:meta:d1")
	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.InDelta(t, 48.8566, got.Latitude, coordTolerance)
	require.InDelta(t, 2.3522, got.Longitude, coordTolerance)

	// metadata present, marker gone: invisible
	_, err = store.Upsert(ctx, ping("d2", 48.8566, 2.3522), time.Minute)
	require.NoError(t, err)
	mr.Del("location_pings:ttl:d2")
	got, err = store.Get(ctx, "d2")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPresenceAdapter_ReUpsertKeepsLatestOnly(t *testing.T) {
	store, _ := newTestPresence(t)
	ctx := context.Background()

	stored, err := store.Upsert(ctx, ping("d1", 37.7749, -122.4194), time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	stored, err = store.Upsert(ctx, ping("d1", 37.8044, -122.2712), time.Minute)
	require.NoError(t, err)
	require.False(t, stored, "second upsert updates, does not add")

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	require.InDelta(t, 37.8044, got.Latitude, coordTolerance)
	require.InDelta(t, -122.2712, got.Longitude, coordTolerance)

	// wide radius covering both positions returns d1 exactly once
	nearby, err := store.QueryNearby(ctx, 37.7749, -122.4194, 50000)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	require.Equal(t, "d1", nearby[0].DeviceID)
	require.InDelta(t, 37.8044, nearby[0].Latitude, coordTolerance)
}

func TestPresenceAdapter_QueryNearbyOrderedAndMonotonic(t *testing.T) {
	store, _ := newTestPresence(t)
	ctx := context.Background()

	centerLat, centerLon := 37.7749, -122.4194
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 40; i++ {
		lat := centerLat + (rng.Float64()-0.5)*0.05
		lon := centerLon + (rng.Float64()-0.5)*0.05
		_, err := store.Upsert(ctx, ping(fmt.Sprintf("dev-%02d", i), lat, lon), time.Minute)
		require.NoError(t, err)
	}

	radii := []float64{250, 500, 1000, 2000, 5000}
	var previous map[string]struct{}
	for _, r := range radii {
		nearby, err := store.QueryNearby(ctx, centerLat, centerLon, r)
		require.NoError(t, err)

		current := make(map[string]struct{}, len(nearby))
		for i, d := range nearby {
			require.LessOrEqual(t, d.Distance, r)
			if i > 0 {
				require.LessOrEqual(t, nearby[i-1].Distance, d.Distance, "results must be sorted by distance")
			}
			current[d.DeviceID] = struct{}{}
		}
		for id := range previous {
			require.Contains(t, current, id, "radius %v lost device %s", r, id)
		}
		previous = current
	}
	require.Len(t, previous, 40)
}

func TestPresenceAdapter_PolesAndAntimeridian(t *testing.T) {
	store, _ := newTestPresence(t)
	ctx := context.Background()

	corners := []struct {
		id       string
		lat, lon float64
	}{
		{"north-east", 90, 180},
		{"south-west", -90, -180},
		{"north-west", 90, -180},
	}
	for _, c := range corners {
		_, err := store.Upsert(ctx, ping(c.id, c.lat, c.lon), time.Minute)
		require.NoError(t, err, c.id)

		got, err := store.Get(ctx, c.id)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, c.lat, got.Latitude)
		require.Equal(t, c.lon, got.Longitude)
	}

	_, err := store.Upsert(ctx, ping("bad", 90.0001, 0), time.Minute)
	require.ErrorIs(t, err, v1.ErrInvalidCoordinate)

	_, err = store.Upsert(ctx, ping("bad", 0, 180.0001), time.Minute)
	require.ErrorIs(t, err, v1.ErrInvalidCoordinate)

	_, err = store.QueryNearby(ctx, 91, 0, 100)
	require.ErrorIs(t, err, v1.ErrInvalidCoordinate)
}

func TestPresenceAdapter_ReconcileIsIdempotentAndSparesLiveDevices(t *testing.T) {
	store, mr := newTestPresence(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Upsert(ctx, ping(fmt.Sprintf("stale-%d", i), 10, 10), time.Minute)
		require.NoError(t, err)
	}
	mr.FastForward(2 * time.Minute)
	_, err := store.Upsert(ctx, ping("fresh", 10, 10), time.Minute)
	require.NoError(t, err)

	removed, err := store.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, removed)

	removed, err = store.Reconcile(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)

	got, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.False(t, mr.Exists("location_pings:meta:stale-0"))
}

func TestPresenceAdapter_PruneRechecksMarker(t *testing.T) {
	store, mr := newTestPresence(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, ping("d1", 10, 10), time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	// d1 renewed between the scan that nominated it and the prune
	_, err = store.Upsert(ctx, ping("d1", 10.001, 10.001), time.Minute)
	require.NoError(t, err)

	removed, err := store.pruneExpired(ctx, []string{"d1"})
	require.NoError(t, err)
	require.Zero(t, removed)

	nearby, err := store.QueryNearby(ctx, 10, 10, 1000)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
}

func TestPresenceAdapter_ReconcileManyPages(t *testing.T) {
	store, mr := newTestPresence(t)
	store.scanBatch = 7
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := store.Upsert(ctx, ping(fmt.Sprintf("d-%d", i), 1, 1), time.Minute)
		require.NoError(t, err)
	}
	mr.FastForward(2 * time.Minute)
	for i := 0; i < 10; i++ {
		_, err := store.Upsert(ctx, ping(fmt.Sprintf("live-%d", i), 1, 1), time.Minute)
		require.NoError(t, err)
	}

	removed, err := store.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 50, removed)

	indexed, err := store.Indexed(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(10), indexed)
}

func TestPresenceAdapter_SubstrateDown(t *testing.T) {
	store, mr := newTestPresence(t)
	ctx := context.Background()
	mr.Close()

	_, err := store.Upsert(ctx, ping("d1", 1, 1), time.Minute)
	require.Error(t, err)

	_, err = store.Get(ctx, "d1")
	require.Error(t, err)

	_, err = store.QueryNearby(ctx, 1, 1, 100)
	require.Error(t, err)

	_, err = store.Reconcile(ctx)
	require.Error(t, err)

	require.Error(t, store.Ping(ctx))
}

func TestPresenceAdapter_ConcurrentUpsertAndReadStayConsistent(t *testing.T) {
	store, _ := newTestPresence(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 8, 10, 30, 0, 0, time.UTC)

	// write n encodes latitude 10+n/1000, accuracy n+1 and observed_at base+n s,
	// so a reader can tell whether the fields it saw came from one write
	version := func(lat float64) int {
		return int(math.Round((lat - 10) * 1000))
	}

	const writes = 200
	var g errgroup.Group
	g.Go(func() error {
		for n := 0; n < writes; n++ {
			p := ping("d1", 10+float64(n)/1000, 20)
			p.Accuracy = float64(n + 1)
			p.ObservedAt = base.Add(time.Duration(n) * time.Second)
			if _, err := store.Upsert(ctx, p, time.Minute); err != nil {
				return err
			}
		}
		return nil
	})
	for r := 0; r < 4; r++ {
		g.Go(func() error {
			for i := 0; i < writes; i++ {
				got, err := store.Get(ctx, "d1")
				if err != nil {
					return err
				}
				if got != nil {
					n := version(got.Latitude)
					if got.Accuracy != float64(n+1) || !got.ObservedAt.Equal(base.Add(time.Duration(n)*time.Second)) {
						return fmt.Errorf("torn read: lat=%v accuracy=%v observed_at=%v", got.Latitude, got.Accuracy, got.ObservedAt)
					}
				}

				nearby, err := store.QueryNearby(ctx, 10.1, 20, 50000)
				if err != nil {
					return err
				}
				if len(nearby) > 1 {
					return fmt.Errorf("device listed %d times", len(nearby))
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, writes-1, version(got.Latitude))
	require.Equal(t, float64(writes), got.Accuracy)
}
