// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	EventsRecorded *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	SeenQueries    *prometheus.CounterVec

	// Gauges
	IdentitiesStored prometheus.Gauge

	// Histograms (seconds)
	StoreDuration *prometheus.HistogramVec
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{Name: "seen_events_recorded_total", Help: "Number of presence events stored, by kind"}, []string{"kind"})
		EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{Name: "seen_events_dropped_total", Help: "Number of presence events not stored, by reason"}, []string{"reason"})
		SeenQueries = promauto.NewCounterVec(prometheus.CounterOpts{Name: "seen_queries_total", Help: "Number of seen queries answered, by result"}, []string{"result"})
		IdentitiesStored = promauto.NewGauge(prometheus.GaugeOpts{Name: "seen_identities_stored", Help: "Number of (network, nickname) keys in the event store at the last census"})
		StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "seen_store_duration_seconds", Help: "Event store call duration seconds", Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}}, []string{"op"})
	})
}

// RecordEvent counts a stored event of the given kind.
func RecordEvent(kind string) {
	if EventsRecorded != nil {
		EventsRecorded.WithLabelValues(kind).Inc()
	}
}

// DropEvent counts an event that was not stored.
func DropEvent(reason string) {
	if EventsDropped != nil {
		EventsDropped.WithLabelValues(reason).Inc()
	}
}

// CountQuery counts an answered seen query.
func CountQuery(result string) {
	if SeenQueries != nil {
		SeenQueries.WithLabelValues(result).Inc()
	}
}

// SetStored records the result of a store census.
func SetStored(n int64) {
	if IdentitiesStored != nil {
		IdentitiesStored.Set(float64(n))
	}
}

// ObserveStore records how long a store operation took.
func ObserveStore(op string, d time.Duration) {
	if StoreDuration != nil {
		StoreDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

// StoreObserver returns the duration observer for a store operation, or nil
// before Init.
func StoreObserver(op string) prometheus.Observer {
	if StoreDuration == nil {
		return nil
	}
	return StoreDuration.WithLabelValues(op)
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
