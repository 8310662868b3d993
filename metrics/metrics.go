// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "leadgen"

// Pipeline stage labels.
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageVerdict = "verdict"
	StageSink    = "sink"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchFailures     prometheus.Counter
	AIFallbacks       prometheus.Counter
	Duplicates        prometheus.Counter
	LeadsTotal        *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	ReferencesRunning prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetch_failures_total",
			Help:      "References whose fetch failed or timed out",
		}),
		AIFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ai_fallbacks_total",
			Help:      "Leads that received the fallback analysis",
		}),
		Duplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "duplicates_total",
			Help:      "Entities dropped by within-batch deduplication",
		}),
		LeadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "leads_total",
			Help:      "Leads emitted, by source platform",
		}, []string{"source"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		}, []string{"stage"}),
		ReferencesRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "references_in_flight",
			Help:      "References currently being processed",
		}),
	}
}

func (m *Metrics) IncFetchFailure() {
	if m != nil {
		m.FetchFailures.Inc()
	}
}

func (m *Metrics) IncAIFallback() {
	if m != nil {
		m.AIFallbacks.Inc()
	}
}

func (m *Metrics) IncDuplicate() {
	if m != nil {
		m.Duplicates.Inc()
	}
}

func (m *Metrics) IncLead(source string) {
	if m != nil {
		m.LeadsTotal.WithLabelValues(source).Inc()
	}
}

// ObserveStage records the time since start under stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// TrackReference marks a reference in flight; call the returned func when done.
func (m *Metrics) TrackReference() func() {
	if m == nil {
		return func() {}
	}
	m.ReferencesRunning.Inc()
	return m.ReferencesRunning.Dec
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
