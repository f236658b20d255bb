// Package telemetry bundles the Prometheus metrics the engine emits,
// grounded on the teacher's MetricSet and its conditional
// prometheus.Register block. Logging is done with zerolog directly by
// the packages that log; this package holds no logging helpers.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// outcome label values for the Computes counter.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCrash   = "crash"
)

var latencyBucketsMs = []float64{1, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096}

// MetricSet is the Prometheus surface for a single Cache instance,
// mirroring the teacher's MetricSet{Hit, Latency, Error}.
type MetricSet struct {
	Computes      *prometheus.CounterVec
	ComputeMillis *prometheus.HistogramVec
	WaiterTimeout prometheus.Counter
	WorkerState   *prometheus.GaugeVec

	registerer prometheus.Registerer
}

// NewMetricSet builds a MetricSet scoped by appName and, if registerer
// is non-nil, registers the collectors against it (the teacher's
// enableStats flag generalized to "pass a registerer or don't").
func NewMetricSet(appName string, registerer prometheus.Registerer) *MetricSet {
	ms := &MetricSet{
		Computes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_rehydrate_computes_total", appName),
			Help: "Outcomes of registered compute functions, by key and outcome.",
		}, []string{"key", "outcome"}),
		ComputeMillis: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_rehydrate_compute_latency_ms", appName),
			Help:    "Compute latency in milliseconds, by key.",
			Buckets: latencyBucketsMs,
		}, []string{"key"}),
		WaiterTimeout: prometheus.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_rehydrate_waiter_timeouts_total", appName),
			Help: "Count of Get calls released by deadline rather than a fresh value.",
		}),
		WorkerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_rehydrate_worker_state", appName),
			Help: "Current worker state per key: 0=Idle 1=Running 2=Sleeping 3=Stopping.",
		}, []string{"key"}),
		registerer: registerer,
	}
	if registerer != nil {
		registerer.MustRegister(ms.Computes, ms.ComputeMillis, ms.WaiterTimeout, ms.WorkerState)
	}
	return ms
}

// Unregister removes the collectors from the registerer they were
// registered against, mirroring the teacher's Close()-time unregister.
func (ms *MetricSet) Unregister() {
	if ms.registerer == nil {
		return
	}
	ms.registerer.Unregister(ms.Computes)
	ms.registerer.Unregister(ms.ComputeMillis)
	ms.registerer.Unregister(ms.WaiterTimeout)
	ms.registerer.Unregister(ms.WorkerState)
}
