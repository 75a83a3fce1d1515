package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/consultdesk/libs/kafkax"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

type recordingEnqueuer struct {
	tasks []*asynq.Task
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func (e *recordingEnqueuer) Close() error { return nil }

func sample() Notification {
	return Notification{Title: "Executive anomalies detected", Body: "Pending consultation backlog", Severity: "high", Signature: "high:Pending consultation backlog"}
}

func TestKafkaPublisherKeysBySignature(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topic: TopicAnomalyDetected}

	require.NoError(t, p.Publish(context.Background(), sample()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "high:Pending consultation backlog", string(w.msgs[0].Key))
	assert.Equal(t, TopicAnomalyDetected, kafkax.ExtractEventMeta(w.msgs[0]).EventType)

	got, err := Decode(w.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "high", got.Severity)
}

func TestKafkaPublisherSurfacesWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &recordingWriter{err: errors.New("broker down")}, topic: TopicAnomalyDetected}
	require.Error(t, p.Publish(context.Background(), sample()))
}

func TestAsynqPublisherEnqueuesAlertTask(t *testing.T) {
	e := &recordingEnqueuer{}
	p := &AsynqPublisher{client: e, queue: "alerts"}

	require.NoError(t, p.Publish(context.Background(), sample()))
	require.Len(t, e.tasks, 1)
	assert.Equal(t, TaskOperatorAlert, e.tasks[0].Type())
}

func TestLogPublisherWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, p.Publish(context.Background(), sample()))
	assert.Contains(t, buf.String(), "Pending consultation backlog")
}
