package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/analytics"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/booking"
)

var (
	_ booking.Recorder   = (*Collectors)(nil)
	_ analytics.Recorder = (*Collectors)(nil)
)

func TestCollectors(t *testing.T) {
	c := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, func() error {
		for _, col := range c.Collectors() {
			if err := reg.Register(col); err != nil {
				return err
			}
		}
		return nil
	}())

	c.BookingCreated()
	c.BookingRejected("slot_conflict")
	c.BookingRejected("slot_conflict")
	c.NotificationPublished(true)
	c.NotificationPublished(false)
	c.AnomaliesDetected(3)
	c.AnomaliesDetected(1)
	c.SnapshotDegraded()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.bookingsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.bookingRejections.WithLabelValues("slot_conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.anomalies))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.degraded))
}
