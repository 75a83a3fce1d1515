// Package telemetry exposes booking and analytics outcomes as Prometheus
// collectors.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collectors struct {
	bookingsCreated   prometheus.Counter
	bookingRejections *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	anomalies         prometheus.Gauge
	degraded          prometheus.Counter
}

func New() *Collectors {
	return &Collectors{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consulting_bookings_created_total",
			Help: "Consultation bookings persisted.",
		}),
		bookingRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consulting_booking_rejections_total",
			Help: "Booking requests refused, by reason.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consulting_anomaly_notifications_total",
			Help: "Anomaly summary notifications, by publish result.",
		}, []string{"result"}),
		anomalies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "consulting_executive_anomalies",
			Help: "Anomalies found by the latest executive snapshot.",
		}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consulting_snapshot_degraded_total",
			Help: "Executive snapshots served from the zeroed fallback.",
		}),
	}
}

// Collectors lists everything for registration.
func (c *Collectors) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.bookingsCreated, c.bookingRejections, c.notifications, c.anomalies, c.degraded}
}

func (c *Collectors) BookingCreated() { c.bookingsCreated.Inc() }

func (c *Collectors) BookingRejected(reason string) {
	c.bookingRejections.WithLabelValues(reason).Inc()
}

func (c *Collectors) AnomaliesDetected(n int) { c.anomalies.Set(float64(n)) }

func (c *Collectors) NotificationPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.notifications.WithLabelValues(result).Inc()
}

func (c *Collectors) SnapshotDegraded() { c.degraded.Inc() }
