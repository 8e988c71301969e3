package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/aevon-lab/geopresence/internal/core/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "geopresence"

// Ping outcome label values.
const (
	outcomeAccepted    = "accepted"
	outcomeRateLimited = "rate_limited"
	outcomeInvalid     = "invalid"
	outcomeStoreError  = "store_error"
	outcomeOK          = "ok"
)

// Metrics groups the service's Prometheus collectors.
type Metrics struct {
	Pings         *prometheus.CounterVec
	Queries       *prometheus.CounterVec
	Swept         prometheus.Counter
	SweepFailures prometheus.Counter
}

// NewMetrics registers the collectors on reg. A nil reg creates unregistered
// collectors, which is what tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Pings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pings_total",
			Help:      "Location pings by outcome.",
		}, []string{"outcome"}),
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queries_total",
			Help:      "Nearby and density queries by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Swept: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "swept_devices_total",
			Help:      "Expired geo entries removed by reconcile.",
		}),
		SweepFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sweep_failures_total",
			Help:      "Reconcile runs that ended in an error.",
		}),
	}
}

// RegisterIndexGauge exposes the physical size of the geo index, live devices
// plus entries pending cleanup. It is read on every scrape.
func RegisterIndexGauge(reg prometheus.Registerer, store storage.PresenceStore) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "indexed_devices",
		Help:      "Entries physically present in the geo index.",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := store.Indexed(ctx)
		if err != nil {
			slog.Warn("[Metrics] Failed to read geo index size", "error", err)
			return 0
		}
		return float64(n)
	})
}
