package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation results used as the "result" label of ReservationsTotal.
const (
	ResultCreated     = "created"
	ResultInvalid     = "invalid_input"
	ResultNotFound    = "staff_not_found"
	ResultUnavailable = "staff_unavailable"
	ResultStoreError  = "store_unavailable"
)

// Metrics holds the Prometheus metrics for the application.
// It includes counters for reservations, lookups and transport activity,
// and histograms for reservation, availability and export measurements.
type Metrics struct {
	ReservationsTotal   *prometheus.CounterVec   // Counter for reservation attempts by result
	ReservationDuration prometheus.Histogram     // Histogram for the full reservation path
	AvailabilityQueries prometheus.Counter       // Counter for availability lookups
	AvailableStaff      prometheus.Histogram     // Histogram for the number of free staff per lookup
	ExportDuration      *prometheus.HistogramVec // Histogram for booking export durations
	HTTPRequests        *prometheus.CounterVec   // Counter for API requests
	BotCommands         *prometheus.CounterVec   // Counter for Telegram commands
}

// NewMetrics creates a new Metrics instance with the provided Prometheus Registerer.
//
// Parameters:
//   - reg: A Prometheus Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ReservationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "chronos_reservations_total",
			Help: "Total number of reservation attempts",
		}, []string{"result"}), // result: created, invalid_input, staff_not_found, staff_unavailable, store_unavailable
		ReservationDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "chronos_reservation_duration_seconds",
			Help:    "Duration of reservations including lock wait and store round trips.",
			Buckets: prometheus.DefBuckets,
		}),
		AvailabilityQueries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "chronos_availability_queries_total",
			Help: "Total number of availability lookups",
		}),
		AvailableStaff: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "chronos_available_staff",
			Help:    "Number of staff members reported as free per availability lookup.",
			Buckets: prometheus.LinearBuckets(0, 5, 10), //nolint:mnd // 0..45 staff
		}),
		ExportDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "chronos_export_duration_seconds",
			Help: "Duration of booking exports.",
		}, []string{"format"}), // format: csv, xlsx
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "chronos_http_requests_total",
			Help: "Total number of API requests",
		}, []string{"method", "route", "status"}),
		BotCommands: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "chronos_telegram_commands_total",
			Help: "Total number of used bot commands",
		}, []string{"command"}), // command: /start, /staff, /free, /book, /bookings, /export
	}
}
