package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/consultdesk/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Handler func(ctx context.Context, msg kafka.Message) error

// Reader is the part of *kafka.Reader the consumer needs. Offsets are
// committed explicitly, after the handler succeeded.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Inbox remembers handled event ids. Record runs only after the handler
// succeeded, so a failed or interrupted event is delivered again.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID string, eventType string) (bool, error)
}

type Consumer struct {
	reader  Reader
	logger  *slog.Logger
	inbox   Inbox
	handler Handler
	backoff time.Duration
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

func New(logger *slog.Logger, inboxRepo Inbox, cfg Config, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewWithReader(reader, logger, inboxRepo, handler)
}

func NewWithReader(reader Reader, logger *slog.Logger, inboxRepo Inbox, handler Handler) *Consumer {
	return &Consumer{
		reader:  reader,
		logger:  logger,
		inbox:   inboxRepo,
		handler: handler,
		backoff: time.Second,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka fetch error", "err", err)
			if !c.wait(ctx) {
				return
			}
			continue
		}
		if err := c.process(ctx, msg); err != nil {
			// Uncommitted: the group hands the message out again after a restart.
			c.logger.Warn("event left uncommitted", "err", err, "offset", msg.Offset)
			return
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka commit error", "err", err, "offset", msg.Offset)
		}
	}
}

// process returns nil once the event is handled or known to be a duplicate.
// Failures are retried with backoff until ctx ends.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)

	for {
		err := c.attempt(ctxSpan, meta, msg)
		if err == nil {
			return nil
		}
		span.RecordError(err)
		c.logger.Error("event processing failed", "err", err, "event_id", meta.EventID)
		if !c.wait(ctx) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) attempt(ctx context.Context, meta kafkax.EventMeta, msg kafka.Message) error {
	seen, err := c.inbox.Seen(ctx, meta.EventID)
	if err != nil {
		return fmt.Errorf("inbox lookup: %w", err)
	}
	if seen {
		c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		return nil
	}
	if err := c.handler(ctx, msg); err != nil {
		return fmt.Errorf("handle: %w", err)
	}
	if _, err := c.inbox.Record(ctx, meta.EventID, meta.EventType); err != nil {
		return fmt.Errorf("inbox record: %w", err)
	}
	return nil
}

func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.backoff):
		return true
	}
}
