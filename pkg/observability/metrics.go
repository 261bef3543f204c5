package observability

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Tool run outcomes recorded on the runs counter.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

var (
	registerOnce sync.Once

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osamcp",
			Name:      "requests_total",
			Help:      "JSON-RPC requests routed, by method.",
		},
		[]string{"method"},
	)

	requestErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osamcp",
			Name:      "request_errors_total",
			Help:      "JSON-RPC requests answered with a structured error.",
		},
		[]string{"method", "code"},
	)

	framesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "osamcp",
			Name:      "frames_dropped_total",
			Help:      "Malformed frames dropped from the inbound stream.",
		},
	)

	toolRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osamcp",
			Subsystem: "tool",
			Name:      "runs_total",
			Help:      "Tool invocations, by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	toolRunSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "osamcp",
			Subsystem: "tool",
			Name:      "run_seconds",
			Help:      "Wall-clock duration of interpreter runs.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

// RegisterMetrics registers every collector with the default registry,
// exactly once no matter how often it is called.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			requestsTotal,
			requestErrorsTotal,
			framesDroppedTotal,
			toolRunsTotal,
			toolRunSeconds,
		)
	})
}

// RecordRequest counts one routed request.
func RecordRequest(method string) {
	RegisterMetrics()
	requestsTotal.WithLabelValues(method).Inc()
}

// RecordRequestError counts one structured error response.
func RecordRequestError(method string, code int) {
	RegisterMetrics()
	requestErrorsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// RecordFrameDropped counts one malformed frame skipped by the read loop.
func RecordFrameDropped() {
	RegisterMetrics()
	framesDroppedTotal.Inc()
}

// RecordToolRun counts one interpreter run with its duration.
func RecordToolRun(tool, outcome string, elapsed time.Duration) {
	RegisterMetrics()
	toolRunsTotal.WithLabelValues(tool, outcome).Inc()
	toolRunSeconds.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ServeMetrics exposes /metrics on addr in a background goroutine. The
// returned server lets callers shut the listener down; the serve loop logs
// and gives up on listen failures rather than taking the process with it.
func ServeMetrics(addr string) *http.Server {
	RegisterMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	return srv
}
