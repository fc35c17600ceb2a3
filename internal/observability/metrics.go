// Package observability carries the process metrics and HTTP middleware
// shared by the generator and the wire console.
package observability

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canvasproto",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "canvasproto",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	codegenResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canvasproto",
			Subsystem: "codegen",
			Name:      "results_total",
			Help:      "Generation results per target and outcome.",
		},
		[]string{"target", "outcome", "skipped"},
	)
	codegenDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "canvasproto",
			Subsystem: "codegen",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one generation run.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)
	codecOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "canvasproto",
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Message encode, decode and create calls served by the wire console.",
		},
		[]string{"type", "op", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codegenResults, codegenDuration, codecOps)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCodegenResult(target, outcome string, skipped bool) {
	RegisterMetrics()
	codegenResults.WithLabelValues(target, outcome, strconv.FormatBool(skipped)).Inc()
}

func RecordCodegenRun(duration time.Duration) {
	RegisterMetrics()
	codegenDuration.Observe(duration.Seconds())
}

func RecordCodecOp(typeName, op string, err error) {
	RegisterMetrics()
	codecOps.WithLabelValues(typeName, op, strconv.FormatBool(err == nil)).Inc()
}

// WriteTextfile writes every registered collector to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("observability: write metrics %s: %w", path, err)
	}
	return nil
}
