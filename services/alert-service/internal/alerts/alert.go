// Package alerts stores operator alerts raised by the consulting analytics
// pipeline.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/md-rashed-zaman/consultdesk/libs/notify"
)

const (
	SourceKafka = "kafka"
	SourceAsynq = "asynq"
)

// ErrInvalidAlert marks payloads that can never be processed; callers should
// not retry them.
var ErrInvalidAlert = errors.New("alerts: invalid alert payload")

type Alert struct {
	EventID    string
	Signature  string
	Title      string
	Body       string
	Severity   string
	Source     string
	ReceivedAt time.Time
}

// Store persists alerts. Insert reports false when the event id is known.
type Store interface {
	Insert(ctx context.Context, a Alert) (bool, error)
}

type Processor struct {
	store    Store
	logger   *slog.Logger
	received *prometheus.CounterVec
	now      func() time.Time
}

func NewProcessor(store Store, logger *slog.Logger) *Processor {
	return &Processor{
		store:  store,
		logger: logger,
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operator_alerts_received_total",
			Help: "Operator alerts stored, by source and severity.",
		}, []string{"source", "severity"}),
		now: time.Now,
	}
}

func (p *Processor) Collector() prometheus.Collector {
	return p.received
}

// Handle decodes one notification and stores it.
func (p *Processor) Handle(ctx context.Context, source, eventID string, payload []byte) error {
	n, err := notify.Decode(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlert, err)
	}
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Severity) == "" {
		return fmt.Errorf("%w: title and severity are required", ErrInvalidAlert)
	}
	if eventID == "" {
		eventID = n.Signature + "@" + n.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	inserted, err := p.store.Insert(ctx, Alert{
		EventID:    eventID,
		Signature:  n.Signature,
		Title:      n.Title,
		Body:       n.Body,
		Severity:   n.Severity,
		Source:     source,
		ReceivedAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("store alert: %w", err)
	}
	if !inserted {
		p.logger.InfoContext(ctx, "duplicate alert ignored", "event_id", eventID, "source", source)
		return nil
	}
	p.received.WithLabelValues(source, n.Severity).Inc()
	p.logger.WarnContext(ctx, "operator alert",
		"title", n.Title,
		"severity", n.Severity,
		"signature", n.Signature,
		"source", source,
	)
	return nil
}
