package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	v1 "github.com/aevon-lab/geopresence/internal/api/v1"
	"github.com/aevon-lab/geopresence/internal/core/storage"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
)

const (
	defaultPingTTL         = 60 * time.Second
	defaultIntervalMin     = 30
	defaultIntervalMax     = 60
	defaultMaxQueryRadius  = 50000.0
	defaultMaxBodySizeByte = 16 * 1024

	statusSuccess = "success"
)

// Options tunes the service. Zero values fall back to the defaults.
type Options struct {
	PingTTL         time.Duration
	IntervalMin     int // seconds
	IntervalMax     int // seconds
	MaxQueryRadius  float64
	MaxBodySizeByte int
}

func (o Options) normalized() Options {
	if o.PingTTL <= 0 {
		o.PingTTL = defaultPingTTL
	}
	if o.IntervalMin <= 0 {
		o.IntervalMin = defaultIntervalMin
	}
	if o.IntervalMax < o.IntervalMin {
		o.IntervalMax = max(defaultIntervalMax, o.IntervalMin)
	}
	if !(o.MaxQueryRadius > 0) {
		o.MaxQueryRadius = defaultMaxQueryRadius
	}
	if o.MaxBodySizeByte <= 0 {
		o.MaxBodySizeByte = defaultMaxBodySizeByte
	}
	return o
}

// PingInput is one location report after wire decoding.
type PingInput struct {
	DeviceID   string
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	ObservedAt time.Time
}

// PingResult is returned for an accepted ping.
type PingResult struct {
	Status           string
	Stored           bool
	NextPingInterval int
	// RemainingQuota is the number of pings the device may still send in the
	// current window.
	RemainingQuota int
}

// Density is the live device count inside a circle.
type Density struct {
	DeviceCount   int
	DevicesPerKm2 float64
}

// Service accepts location pings and answers proximity queries.
// It owns no state; presence and rate limit state live in the substrate.
type Service struct {
	store   storage.PresenceStore
	limiter storage.RateLimiter
	clock   quartz.Clock
	metrics *Metrics
	opts    Options

	// intervalFn picks the next ping interval in [min, max].
	intervalFn func(min, max int) int
}

// NewService wires the service. A nil clock uses the real clock and nil
// metrics creates unregistered collectors.
func NewService(store storage.PresenceStore, limiter storage.RateLimiter, opts Options, clock quartz.Clock, metrics *Metrics) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if limiter == nil {
		panic("ingestion: limiter must not be nil")
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		store:      store,
		limiter:    limiter,
		clock:      clock,
		metrics:    metrics,
		opts:       opts.normalized(),
		intervalFn: randomInterval,
	}
}

func randomInterval(min, max int) int {
	return min + rand.IntN(max-min+1)
}

// RegisterRoutes registers the ingestion and query routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/ping", s.PingHandler)
	r.GET("/nearby", s.NearbyHandler)
	r.GET("/density", s.DensityHandler)
	r.POST("/cleanup", s.CleanupHandler)
	r.GET("/ratelimit/:device_id", s.RemainingHandler)
}

// SubmitPing runs the ping pipeline: device id check, rate limit, coordinate
// validation, presence upsert, next interval hint. Nothing is retried; the
// client resends on the next interval.
func (s *Service) SubmitPing(ctx context.Context, in PingInput) (*PingResult, error) {
	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		s.metrics.Pings.WithLabelValues(outcomeInvalid).Inc()
		return nil, ErrInvalidDeviceID
	}

	now := s.clock.Now()
	decision, err := s.limiter.Admit(ctx, deviceID, now)
	if err != nil {
		slog.Error("[Ingestion] Rate limit check failed", "device_id", deviceID, "error", err)
		s.metrics.Pings.WithLabelValues(outcomeStoreError).Inc()
		return nil, storeUnavailable(err)
	}
	if !decision.Allowed {
		slog.Warn("[Ingestion] Rate limit exceeded",
			"device_id", deviceID,
			"count", decision.Count,
			"retry_after", decision.RetryAfter)
		s.metrics.Pings.WithLabelValues(outcomeRateLimited).Inc()
		return nil, &RateLimitedError{DeviceID: deviceID, RetryAfter: decision.RetryAfter}
	}

	observedAt := in.ObservedAt
	if observedAt.IsZero() {
		observedAt = now
	}
	ping := &v1.DevicePing{
		DeviceID:   deviceID,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Accuracy:   in.Accuracy,
		ObservedAt: observedAt.UTC(),
	}
	if err := ping.Validate(); err != nil {
		slog.Warn("[Ingestion] Invalid location ping", "device_id", deviceID, "error", err)
		s.metrics.Pings.WithLabelValues(outcomeInvalid).Inc()
		if errors.Is(err, ErrInvalidCoordinate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocationData, err)
	}

	stored, err := s.store.Upsert(ctx, ping, s.opts.PingTTL)
	if err != nil {
		slog.Error("[Ingestion] Failed to store location ping", "device_id", deviceID, "error", err)
		s.metrics.Pings.WithLabelValues(outcomeStoreError).Inc()
		return nil, storeUnavailable(err)
	}

	s.metrics.Pings.WithLabelValues(outcomeAccepted).Inc()
	slog.Debug("[Ingestion] Location ping stored",
		"device_id", deviceID,
		"latitude", ping.Latitude,
		"longitude", ping.Longitude,
		"new_device", stored)

	return &PingResult{
		Status:           statusSuccess,
		Stored:           stored,
		NextPingInterval: s.intervalFn(s.opts.IntervalMin, s.opts.IntervalMax),
		RemainingQuota:   decision.Remaining,
	}, nil
}

func (s *Service) validateQuery(lat, lon, radius float64) error {
	if err := v1.ValidateCoordinates(lat, lon); err != nil {
		return err
	}
	if !(radius > 0) || radius > s.opts.MaxQueryRadius {
		return fmt.Errorf("%w: radius %v must be in (0, %v]", ErrInvalidQuery, radius, s.opts.MaxQueryRadius)
	}
	return nil
}

// GetNearby returns live devices within radius meters, nearest first.
func (s *Service) GetNearby(ctx context.Context, lat, lon, radius float64) ([]v1.NearbyDevice, error) {
	if err := s.validateQuery(lat, lon, radius); err != nil {
		s.metrics.Queries.WithLabelValues("nearby", outcomeInvalid).Inc()
		return nil, err
	}

	devices, err := s.store.QueryNearby(ctx, lat, lon, radius)
	if err != nil {
		slog.Error("[Ingestion] Nearby query failed", "latitude", lat, "longitude", lon, "radius", radius, "error", err)
		s.metrics.Queries.WithLabelValues("nearby", outcomeStoreError).Inc()
		return nil, storeUnavailable(err)
	}

	s.metrics.Queries.WithLabelValues("nearby", outcomeOK).Inc()
	return devices, nil
}

// EstimateDensity counts live devices inside the circle and normalizes by its
// area in km².
func (s *Service) EstimateDensity(ctx context.Context, lat, lon, radius float64) (*Density, error) {
	if err := s.validateQuery(lat, lon, radius); err != nil {
		s.metrics.Queries.WithLabelValues("density", outcomeInvalid).Inc()
		return nil, err
	}

	devices, err := s.store.QueryNearby(ctx, lat, lon, radius)
	if err != nil {
		slog.Error("[Ingestion] Density query failed", "latitude", lat, "longitude", lon, "radius", radius, "error", err)
		s.metrics.Queries.WithLabelValues("density", outcomeStoreError).Inc()
		return nil, storeUnavailable(err)
	}

	s.metrics.Queries.WithLabelValues("density", outcomeOK).Inc()
	areaKm2 := math.Pi * radius * radius / 1e6
	return &Density{
		DeviceCount:   len(devices),
		DevicesPerKm2: float64(len(devices)) / areaKm2,
	}, nil
}

// Cleanup prunes expired geo entries. On failure the partial count is still
// returned alongside ErrReconcileFailure.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.store.Reconcile(ctx)
	s.metrics.Swept.Add(float64(removed))
	if err != nil {
		slog.Error("[Ingestion] Cleanup failed", "removed", removed, "error", err)
		s.metrics.SweepFailures.Inc()
		return removed, fmt.Errorf("%w: %w", ErrReconcileFailure, err)
	}
	return removed, nil
}

// Remaining reports how many pings the device may still send in the window.
func (s *Service) Remaining(ctx context.Context, deviceID string) (int, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return 0, ErrInvalidDeviceID
	}
	remaining, err := s.limiter.Remaining(ctx, deviceID, s.clock.Now())
	if err != nil {
		slog.Error("[Ingestion] Rate limit lookup failed", "device_id", deviceID, "error", err)
		return 0, storeUnavailable(err)
	}
	return remaining, nil
}
