// Package notify delivers operator notifications produced by the analytics
// pipeline.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	TopicAnomalyDetected = "consulting.anomaly.detected.v1"
	TaskOperatorAlert    = "consulting:operator_alert"
)

type Notification struct {
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Severity  string            `json:"severity"`
	Signature string            `json:"signature"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

func Encode(n Notification) ([]byte, error) {
	return json.Marshal(n)
}

func Decode(b []byte) (Notification, error) {
	var n Notification
	err := json.Unmarshal(b, &n)
	return n, err
}

// LogPublisher writes notifications to the service log only.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, n Notification) error {
	p.logger.InfoContext(ctx, "operator notification",
		"title", n.Title,
		"body", n.Body,
		"severity", n.Severity,
		"signature", n.Signature,
	)
	return nil
}
