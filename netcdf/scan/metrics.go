package scan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by Scan.
type Metrics struct {
	Scans        prometheus.Counter
	ScanFailures *prometheus.CounterVec // labels: class={dimsize,structure,store}
	Diagnostics  *prometheus.CounterVec // labels: level={error,warn,info}
	DataVars     prometheus.Counter
	Grids        prometheus.Counter
	ZAxes        prometheus.Counter
	Timesteps    prometheus.Counter
	ScanDuration prometheus.Histogram
}

// NewMetrics creates the scan metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "scans_total",
			Help:      "Datasets scanned.",
		}),
		ScanFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "scan_failures_total",
			Help:      "Scans that returned an error, by class.",
		}, []string{"class"}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted while scanning, by level.",
		}, []string{"level"}),
		DataVars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "data_variables_total",
			Help:      "Data variables cataloged.",
		}),
		Grids: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "grids_total",
			Help:      "Distinct grids cataloged.",
		}),
		ZAxes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "zaxes_total",
			Help:      "Distinct vertical axes cataloged.",
		}),
		Timesteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ncscan",
			Name:      "timesteps_total",
			Help:      "Timesteps cataloged.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ncscan",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a complete dataset scan.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Scans,
			m.ScanFailures,
			m.Diagnostics,
			m.DataVars,
			m.Grids,
			m.ZAxes,
			m.Timesteps,
			m.ScanDuration,
		)
	}
	return m
}
