package observability

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_events_processed_total",
		Help: "The total number of processed quote change events",
	}, []string{"type", "outcome"}) // outcome: handled, requeued, malformed

	QuotaClosures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "request_quota_closures_total",
		Help: "The total number of requests closed because the quote quota was reached",
	})

	RequestReopens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "request_reopens_total",
		Help: "The total number of quota-closed requests reopened after a quote deletion",
	})

	CounterClamps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_count_clamps_total",
		Help: "The total number of decrements that would have driven a quote count negative",
	})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "The total number of notification intents created",
	}, []string{"kind"})

	ReconciliationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_count_reconciliations_total",
		Help: "The total number of quote count reconciliation runs",
	}, []string{"outcome"}) // outcome: clean, corrected

	HandleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_event_handle_duration_seconds",
		Help:    "Duration of quote event handling.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

// NewLogger creates a new structured logger.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// StartMetricsServer runs an HTTP server to expose Prometheus metrics.
func StartMetricsServer(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server failed", "error", err)
		}
	}()
}
