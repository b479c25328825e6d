// Package metrics provides Prometheus metrics for the fraud scoring run:
// prediction counts, failures, latency, score distribution, and model age.
// The process is single-shot, so metrics are gathered into a run summary
// at exit instead of being served.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scoring run.
type Metrics struct {
	PredictionsTotal   prometheus.Counter   // Total number of predictions made
	PredictionFailures prometheus.Counter   // Total number of failed predictions
	LoadFailures       prometheus.Counter   // Total number of artifact load failures
	ModelAge           prometheus.Gauge     // Age of the loaded model artifact in seconds
	PredictionLatency  prometheus.Histogram // End-to-end prediction latency in seconds
	PredictionScores   prometheus.Histogram // Distribution of fraud probabilities
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics on a custom registry, keeping tests
// isolated from the global state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions made",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions",
		}),
		LoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_load_failures_total",
			Help: "Total number of artifact load failures",
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of fraud probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}

// Summary gathers metric values from a registry for the end-of-run log
// line. Histograms report their sample counts.
func Summary(gatherer prometheus.Gatherer) map[string]float64 {
	out := make(map[string]float64)

	families, err := gatherer.Gather()
	if err != nil {
		return out
	}

	for _, mf := range families {
		for _, m := range mf.Metric {
			switch {
			case m.Counter != nil:
				out[mf.GetName()] = m.Counter.GetValue()
			case m.Gauge != nil:
				out[mf.GetName()] = m.Gauge.GetValue()
			case m.Histogram != nil:
				out[mf.GetName()] = float64(m.Histogram.GetSampleCount())
			}
		}
	}

	return out
}
