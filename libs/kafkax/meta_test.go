package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestNewMessageRoundTripsMeta(t *testing.T) {
	msg := NewMessage(context.Background(), "booking-1", EventMeta{
		EventID:   "evt-1",
		EventType: "consulting.booking.created.v1",
	}, []byte(`{}`))

	meta := ExtractEventMeta(msg)
	assert.Equal(t, "evt-1", meta.EventID)
	assert.Equal(t, "consulting.booking.created.v1", meta.EventType)
	assert.Equal(t, "booking-1", string(msg.Key))
}

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	meta := ExtractEventMeta(kafka.Message{Topic: "consulting.anomaly.detected.v1", Key: []byte("sig")})
	assert.Equal(t, "sig", meta.EventID)
	assert.Equal(t, "consulting.anomaly.detected.v1", meta.EventType)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitBrokers(" kafka-1:9092, ,kafka-2:9092"))
	assert.Nil(t, SplitBrokers(""))
}
