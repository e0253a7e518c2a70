package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring daemon.
type Metrics struct {
	CheckCycles       prometheus.Counter
	CheckErrors       *prometheus.CounterVec // labels: building_code
	ObservationsWrote prometheus.Counter
	AlertsTriggered   prometheus.Counter
	MonitorRunning    prometheus.Gauge

	CheckCycleDuration prometheus.Histogram
	ForecastDuration   prometheus.Histogram

	EmailsSent   prometheus.Counter
	EmailsFailed prometheus.Counter
}

// NewMetrics creates and registers all daemon metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CheckCycles,
		m.CheckErrors,
		m.ObservationsWrote,
		m.AlertsTriggered,
		m.MonitorRunning,
		m.CheckCycleDuration,
		m.ForecastDuration,
		m.EmailsSent,
		m.EmailsFailed,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CheckCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherguard",
			Name:      "check_cycles_total",
			Help:      "Total completed weather check cycles.",
		}),
		CheckErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherguard",
			Name:      "check_errors_total",
			Help:      "Per-location failures during check cycles.",
		}, []string{"building_code"}),
		ObservationsWrote: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherguard",
			Name:      "observations_written_total",
			Help:      "Total evaluation result rows appended to storage.",
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherguard",
			Name:      "alerts_triggered_total",
			Help:      "Total evaluated samples that breached a threshold.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weatherguard",
			Name:      "monitor_running",
			Help:      "1 while the scheduler loop is active, 0 when shut down.",
		}),
		CheckCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weatherguard",
			Name:      "check_cycle_duration_seconds",
			Help:      "Duration of a full fetch-evaluate-store cycle across all locations.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weatherguard",
			Name:      "forecast_fetch_duration_seconds",
			Help:      "Duration of a single forecast API request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherguard",
			Name:      "alert_emails_sent_total",
			Help:      "Total alert emails successfully handed to the provider.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weatherguard",
			Name:      "alert_emails_failed_total",
			Help:      "Total alert email delivery failures.",
		}),
	}
}
