package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles report job metrics.
type Metrics struct {
	ReportsTriggered prometheus.Counter
	JobsTotal        *prometheus.CounterVec
	JobDuration      prometheus.Histogram
	StoresScored     prometheus.Histogram
	ExportsTotal     *prometheus.CounterVec
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		ReportsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storemon_reports_triggered_total",
			Help: "Total report generations triggered",
		}),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storemon_report_jobs_total",
				Help: "Total report jobs by terminal status",
			},
			[]string{"status"},
		),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storemon_report_job_duration_seconds",
			Help:    "Report generation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		StoresScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storemon_report_stores_scored",
			Help:    "Stores scored per completed report",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storemon_report_exports_total",
				Help: "Total report downloads by format",
			},
			[]string{"format"},
		),
	}
	prometheus.MustRegister(
		m.ReportsTriggered,
		m.JobsTotal,
		m.JobDuration,
		m.StoresScored,
		m.ExportsTotal,
	)
	return m
}
