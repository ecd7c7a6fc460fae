package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "payee_manager",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payee_manager",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payee_manager",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	payeeFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payee_manager",
			Subsystem: "manager",
			Name:      "payee_fetches_total",
			Help:      "Payee retrievals started by manager sessions, by outcome.",
		},
		[]string{"outcome"},
	)

	payeeFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payee_manager",
			Subsystem: "manager",
			Name:      "payee_fetch_duration_seconds",
			Help:      "Duration of payee retrievals.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"outcome"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "payee_manager",
			Subsystem: "manager",
			Name:      "active_sessions",
			Help:      "Number of mounted manager sessions.",
		},
	)

	dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payee_manager",
			Subsystem: "manager",
			Name:      "dispatches_total",
			Help:      "Actions dispatched to manager stores.",
		},
		[]string{"type"},
	)
)

// Fetch outcomes.
const (
	FetchSucceeded = "succeeded"
	FetchFailed    = "failed"
	FetchDiscarded = "discarded"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		payeeFetches,
		payeeFetchDuration,
		activeSessions,
		dispatches,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordFetch records the outcome of a manager payee retrieval.
func RecordFetch(outcome string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	payeeFetches.WithLabelValues(outcome).Inc()
	payeeFetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SessionOpened and SessionClosed track the mounted session gauge.
func SessionOpened() { activeSessions.Inc() }
func SessionClosed() { activeSessions.Dec() }

// RecordDispatch counts a dispatched action.
func RecordDispatch(actionType string) {
	dispatches.WithLabelValues(actionType).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// canonicalPath collapses identifiers so label cardinality stays bounded:
// /manager/sessions/<id>/browse becomes /manager/sessions/:session/browse.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch {
	case parts[0] == "api" && len(parts) >= 2 && parts[1] == "payees":
		if len(parts) == 2 {
			return "/api/payees"
		}
		return "/api/payees/:id"
	case parts[0] == "manager" && len(parts) >= 2 && parts[1] == "sessions":
		if len(parts) == 2 {
			return "/manager/sessions"
		}
		out := "/manager/sessions/:session"
		if len(parts) > 3 {
			out += "/" + strings.Join(parts[3:], "/")
		}
		return out
	default:
		return "/" + parts[0]
	}
}
