// Package metrics provides Prometheus instrumentation for graph
// evaluation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// NodesEvaluated counts how many times each node kind has been run.
	NodesEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timedag_nodes_evaluated_total",
		Help: "Total number of node evaluations by operator kind",
	}, []string{"op_kind"})

	// TicksEmitted counts knots emitted by each node kind.
	TicksEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timedag_ticks_emitted_total",
		Help: "Total number of knots emitted by operator kind",
	}, []string{"op_kind"})

	// EvaluationLatency tracks per-node run latency.
	EvaluationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timedag_node_evaluation_seconds",
		Help:    "Latency of a single node's Run call in seconds",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"op_kind"})

	// EvaluationErrors counts evaluation failures by operator kind.
	EvaluationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timedag_evaluation_errors_total",
		Help: "Total number of node evaluation errors by operator kind",
	}, []string{"op_kind"})
)

// ServeMetrics starts an HTTP server on the given address to serve
// Prometheus metrics at /metrics.
func ServeMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go server.ListenAndServe()
	return server
}
