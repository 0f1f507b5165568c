package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	applicationsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "applications_submitted_total",
		Help: "Job applications created.",
	})

	applicationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_status_transitions_total",
			Help: "Application status transitions applied by employers.",
		},
		[]string{"to"},
	)

	resumeUploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_rejected_total",
			Help: "Resume uploads rejected during validation.",
		},
		[]string{"reason"},
	)
)

// Init registers service metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		applicationsSubmitted,
		applicationTransitions,
		resumeUploadsRejected,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ApplicationSubmitted counts a successful application create.
func ApplicationSubmitted() {
	applicationsSubmitted.Inc()
}

// ApplicationTransition counts a status change by target status.
func ApplicationTransition(to string) {
	applicationTransitions.WithLabelValues(to).Inc()
}

// ResumeUploadRejected counts an upload failed at validation.
func ResumeUploadRejected(reason string) {
	resumeUploadsRejected.WithLabelValues(reason).Inc()
}

// CanonicalPath collapses identifier segments so metric labels stay
// bounded regardless of how many records exist.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	switch {
	case strings.HasPrefix(path, "/v1/applications/"):
		rest := strings.TrimPrefix(path, "/v1/applications/")
		if rest != "" && !strings.Contains(rest, "/") && rest != "my-applications" {
			return "/v1/applications/:id"
		}
	case strings.HasPrefix(path, "/v1/jobs/"):
		rest := strings.TrimPrefix(path, "/v1/jobs/")
		if strings.HasSuffix(rest, "/status") && !strings.Contains(strings.TrimSuffix(rest, "/status"), "/") {
			return "/v1/jobs/:id/status"
		}
		if rest != "" && !strings.Contains(rest, "/") {
			return "/v1/jobs/:id"
		}
	case strings.HasPrefix(path, "/v1/profile/resume/"):
		rest := strings.TrimPrefix(path, "/v1/profile/resume/")
		if rest != "" && !strings.Contains(rest, "/") {
			return "/v1/profile/resume/:filename"
		}
	}
	return path
}

// Instrument wraps a handler with request rate, latency and in-flight
// measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
