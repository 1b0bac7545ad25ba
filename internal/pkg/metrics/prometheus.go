package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restoreaudit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "restoreaudit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "restoreaudit",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Assessment metrics
	assessmentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restoreaudit",
			Subsystem: "assessment",
			Name:      "runs_total",
			Help:      "Total number of assessment runs",
		},
		[]string{"org", "status"},
	)

	assessmentRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "restoreaudit",
			Subsystem: "assessment",
			Name:      "run_duration_seconds",
			Help:      "Duration of an assessment run in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	postureScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "restoreaudit",
			Subsystem: "assessment",
			Name:      "posture_score",
			Help:      "Most recent overall compliance score per organization",
		},
		[]string{"org"},
	)

	findingsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "restoreaudit",
			Subsystem: "assessment",
			Name:      "findings",
			Help:      "Findings produced by the most recent run, by severity",
		},
		[]string{"org", "severity"},
	)

	sourcesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restoreaudit",
			Subsystem: "ingest",
			Name:      "sources_skipped_total",
			Help:      "Result sources skipped because they were unreadable",
		},
		[]string{"kind"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAssessmentRun records the outcome and duration of an assessment run
func RecordAssessmentRun(org, status string, duration time.Duration) {
	assessmentRunsTotal.WithLabelValues(org, status).Inc()
	assessmentRunDuration.Observe(duration.Seconds())
}

// SetPostureScore sets the gauge for the latest overall score
func SetPostureScore(org string, score float64) {
	postureScore.WithLabelValues(org).Set(score)
}

// SetFindingCount sets the gauge for findings by severity
func SetFindingCount(org, severity string, count float64) {
	findingsTotal.WithLabelValues(org, severity).Set(count)
}

// RecordSkippedSource records an unreadable result source
func RecordSkippedSource(kind string) {
	sourcesSkippedTotal.WithLabelValues(kind).Inc()
}
