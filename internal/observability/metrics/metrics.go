package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "gmao_"

	resultSuccess = "success"
)

var (
	registerOnce sync.Once

	pollCycles  *prometheus.CounterVec
	pollLatency *prometheus.HistogramVec

	activeAlerts prometheus.Gauge
	alertEvents  *prometheus.CounterVec

	notificationsRecorded prometheus.Counter

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	interventionRequests *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		pollCycles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_cycles_total",
				Help: "Total status poll cycles by result",
			},
			[]string{"result"},
		)
		pollLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "poll_latency_seconds",
				Help:    "Status poll latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		activeAlerts = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_alerts",
				Help: "Currently displayed banner alerts",
			},
		)
		alertEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_events_total",
				Help: "Total alert lifecycle events by type",
			},
			[]string{"event"},
		)

		notificationsRecorded = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_recorded_total",
				Help: "Total journaled status-transition notifications",
			},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total maintenance report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Maintenance report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		interventionRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "intervention_requests_total",
				Help: "Total proxied intervention/treatment writes by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			pollCycles,
			pollLatency,
			activeAlerts,
			alertEvents,
			notificationsRecorded,
			reportExportTotal,
			reportExportLatency,
			interventionRequests,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObservePoll records one poll cycle duration and result.
func ObservePoll(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if pollCycles != nil {
		pollCycles.WithLabelValues(result).Inc()
	}
	if pollLatency != nil {
		pollLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// SetActiveAlerts sets the active banner alert gauge.
func SetActiveAlerts(count int) {
	if count < 0 {
		count = 0
	}
	if activeAlerts != nil {
		activeAlerts.Set(float64(count))
	}
}

// AlertCreated increments the created-alert counter.
func AlertCreated() {
	incAlertEvent("created")
}

// AlertDismissed increments the dismissed-alert counter.
func AlertDismissed() {
	incAlertEvent("dismissed")
}

// AlertExpired increments the expired-alert counter.
func AlertExpired() {
	incAlertEvent("expired")
}

func incAlertEvent(event string) {
	if alertEvents != nil {
		alertEvents.WithLabelValues(event).Inc()
	}
}

// NotificationRecorded increments the journaled notification counter.
func NotificationRecorded() {
	if notificationsRecorded != nil {
		notificationsRecorded.Inc()
	}
}

// ObserveReportExport records one export duration and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncInterventionRequest increments the proxied write counter.
func IncInterventionRequest(result string) {
	if result == "" {
		result = resultSuccess
	}
	if interventionRequests != nil {
		interventionRequests.WithLabelValues(result).Inc()
	}
}
