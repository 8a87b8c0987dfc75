package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineCollector bundles Prometheus metrics for the filter pipeline and
// the HTTP surface in front of it.
type PipelineCollector struct {
	gatherer prometheus.Gatherer

	Operations         *prometheus.CounterVec
	OperationDurations *prometheus.HistogramVec
	FitWarnings        *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// NewPipelineCollector registers pipeline metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPipelineCollector(reg prometheus.Registerer) (*PipelineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ops, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sparamgen_operations_total",
		Help: "Total number of pipeline operations, labeled by operation and outcome.",
	}, []string{"operation", "outcome"}), "sparamgen_operations_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sparamgen_operation_duration_seconds",
		Help:    "Pipeline operation latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"}), "sparamgen_operation_duration_seconds")
	if err != nil {
		return nil, err
	}

	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sparamgen_fit_warnings_total",
		Help: "Degenerate measurement fits, labeled by channel and kind.",
	}, []string{"channel", "kind"}), "sparamgen_fit_warnings_total")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sparamgen_http_requests_total",
		Help: "Total number of HTTP requests, labeled by method and status code.",
	}, []string{"method", "code"}), "sparamgen_http_requests_total")
	if err != nil {
		return nil, err
	}

	return &PipelineCollector{
		gatherer:           gatherer,
		Operations:         ops,
		OperationDurations: durations,
		FitWarnings:        warnings,
		HTTPRequests:       requests,
	}, nil
}

// ObserveOperation records the outcome and latency of one pipeline operation
func (c *PipelineCollector) ObserveOperation(operation string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Operations.WithLabelValues(operation, outcome).Inc()
	c.OperationDurations.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordFitWarning counts one degenerate fit
func (c *PipelineCollector) RecordFitWarning(channel, kind string) {
	if c == nil {
		return
	}
	c.FitWarnings.WithLabelValues(channel, kind).Inc()
}

// Middleware counts HTTP requests by method and status code
func (c *PipelineCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if c != nil {
			c.HTTPRequests.WithLabelValues(r.Method, fmt.Sprint(rec.status)).Inc()
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PipelineCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
