// Package metrics expone contadores Prometheus del store y de la captura.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "surgical_records"

var (
	RecordsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "commits_total",
		Help:      "Records committed to the store",
	})

	RecordsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "removals_total",
		Help:      "Records removed from the store",
	})

	StoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "records",
		Help:      "Records currently held by the store",
	})

	CorruptLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "corrupt_loads_total",
		Help:      "Startup loads that found an unreadable slot and started empty",
	})

	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "draft",
		Name:      "validation_failures_total",
		Help:      "Commit attempts rejected for missing required fields",
	})

	// Labels: channel (image, audio), result (success, error, busy)
	Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "extractions_total",
		Help:      "Extraction calls by channel and result",
	}, []string{"channel", "result"})

	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "extraction_duration_seconds",
		Help:      "Duration of extraction calls in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
	}, []string{"channel"})
)
