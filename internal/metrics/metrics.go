// Package metrics exposes Prometheus counters for cache synchronization.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "channelsync"

// Metrics holds the counters of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched     prometheus.Counter
	PageFailures     prometheus.Counter
	StaleDiscarded   prometheus.Counter
	Revalidations    prometheus.Counter
	Reorders         *prometheus.CounterVec
	ItemRefreshes    *prometheus.CounterVec
	InFlight         prometheus.Gauge
	FetchDuration    prometheus.Histogram
	StructuralResets prometheus.Counter
	LocalRemovals    prometheus.Counter
}

// New creates the counters on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages merged into the cache.",
		}),
		PageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetch_failures_total",
			Help:      "Page fetches that failed in transport.",
		}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Page results dropped because the view identity changed.",
		}),
		Revalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revalidations_scheduled_total",
			Help:      "Pages re-requested after a local mutation or refresh tick.",
		}),
		Reorders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorders_total",
			Help:      "Reorder requests sent to the remote, by result.",
		}, []string{"result"}),
		ItemRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_refreshes_total",
			Help:      "Single item refreshes, by result.",
		}, []string{"result"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Background remote calls currently running.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Latency of page fetches.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StructuralResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structural_resets_total",
			Help:      "Full refetches triggered by appends.",
		}),
		LocalRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "local_removals_total",
			Help:      "Items spliced out of the cache locally.",
		}),
	}
	m.registry.MustRegister(
		m.PagesFetched,
		m.PageFailures,
		m.StaleDiscarded,
		m.Revalidations,
		m.Reorders,
		m.ItemRefreshes,
		m.InFlight,
		m.FetchDuration,
		m.StructuralResets,
		m.LocalRemovals,
	)
	return m
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) PageFetched(d time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) PageFailed() {
	if m == nil {
		return
	}
	m.PageFailures.Inc()
}

func (m *Metrics) Discarded() {
	if m == nil {
		return
	}
	m.StaleDiscarded.Inc()
}

func (m *Metrics) Revalidated(pages int) {
	if m == nil {
		return
	}
	m.Revalidations.Add(float64(pages))
}

func (m *Metrics) Reordered(err error) {
	if m == nil {
		return
	}
	m.Reorders.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Refreshed(err error) {
	if m == nil {
		return
	}
	m.ItemRefreshes.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.StructuralResets.Inc()
}

func (m *Metrics) Removed() {
	if m == nil {
		return
	}
	m.LocalRemovals.Inc()
}

// TaskStarted and TaskDone track background work.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) TaskDone() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
