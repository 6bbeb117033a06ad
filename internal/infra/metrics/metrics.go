// internal/infra/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SheetSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_sheet_saves_total",
			Help: "Attendance sheet saves by outcome",
		},
		[]string{"outcome"}, // saved, noop, failed, stale, busy
	)

	RowsChangedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_rows_changed_total",
			Help: "Attendance rows written by saves",
		},
		[]string{"op"}, // delete, upsert
	)

	StatusTapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_status_taps_total",
			Help: "Status changes made on open sheets",
		},
	)

	OrphanedRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_orphaned_records_total",
			Help: "Attendance rows found for athletes missing from the roster",
		},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_backend_request_duration_seconds",
			Help:    "Data backend call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	RemindersSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_reminders_sent_total",
			Help: "Unmarked session reminders sent to coaches",
		},
		[]string{"outcome"}, // sent, failed
	)
)

// ObserveBackend records the duration of a backend call started at start.
func ObserveBackend(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	BackendRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
