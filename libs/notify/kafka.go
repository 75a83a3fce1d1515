package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/consultdesk/libs/kafkax"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each notification as one message keyed by signature.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = TopicAnomalyDetected
	}
	return &KafkaPublisher{writer: kafkax.NewWriter(brokers, topic), topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n Notification) error {
	value, err := Encode(n)
	if err != nil {
		return err
	}
	msg := kafkax.NewMessage(ctx, n.Signature, kafkax.EventMeta{
		EventID:   uuid.NewString(),
		EventType: p.topic,
	}, value)
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
