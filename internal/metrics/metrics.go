// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is the metric recording interface used by the service
// and worker layers.
type MetricsCollector interface {
	RecordSearch(totalMatched int)
	RecordSearchLatency(duration time.Duration)
	RecordSearchSuperseded()
	RecordBookingRequested()
	RecordBookingDecision(status string)
	RecordHTTPStatus(statusCode int)
	RecordSessionsPurged(count int64)
}

// Collector is the Prometheus-backed implementation.
type Collector struct {
	searches         prometheus.Counter
	searchMatched    prometheus.Histogram
	searchLatency    prometheus.Histogram
	searchSuperseded prometheus.Counter
	bookingRequested prometheus.Counter
	bookingDecided   *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	sessionsPurged   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshbari_search_total",
			Help: "Total number of listing searches served.",
		}),
		searchMatched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshbari_search_matched",
			Help:    "Number of listings matched per search.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshbari_search_latency_seconds",
			Help:    "Listing search latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		searchSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshbari_search_superseded_total",
			Help: "Searches whose results were dropped because a newer search overtook them.",
		}),
		bookingRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshbari_booking_requested_total",
			Help: "Total number of booking requests created.",
		}),
		bookingDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meshbari_booking_decided_total",
			Help: "Booking decisions by final status.",
		}, []string{"status"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meshbari_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meshbari_sessions_purged_total",
			Help: "Expired sessions removed by the cleanup worker.",
		}),
	}

	reg.MustRegister(
		c.searches,
		c.searchMatched,
		c.searchLatency,
		c.searchSuperseded,
		c.bookingRequested,
		c.bookingDecided,
		c.httpStatus,
		c.sessionsPurged,
	)

	return c
}

// RecordSearch records one served search and its match count.
func (c *Collector) RecordSearch(totalMatched int) {
	c.searches.Inc()
	c.searchMatched.Observe(float64(totalMatched))
}

// RecordSearchLatency records how long a search took.
func (c *Collector) RecordSearchLatency(duration time.Duration) {
	c.searchLatency.Observe(duration.Seconds())
}

// RecordSearchSuperseded records a search result dropped by the
// latest-wins guard.
func (c *Collector) RecordSearchSuperseded() {
	c.searchSuperseded.Inc()
}

// RecordBookingRequested records a created booking request.
func (c *Collector) RecordBookingRequested() {
	c.bookingRequested.Inc()
}

// RecordBookingDecision records a settled booking by status.
func (c *Collector) RecordBookingDecision(status string) {
	c.bookingDecided.WithLabelValues(status).Inc()
}

// RecordHTTPStatus records a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsPurged records sessions removed by the cleanup worker.
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)

// SetupMetricsRoute returns the /metrics handler for the given registry.
func SetupMetricsRoute(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
