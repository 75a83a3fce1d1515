package notify

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqPublisher enqueues notifications on a Redis backed task queue.
type AsynqPublisher struct {
	client taskEnqueuer
	queue  string
}

func NewAsynqPublisher(opt asynq.RedisClientOpt, queue string) *AsynqPublisher {
	if queue == "" {
		queue = "alerts"
	}
	return &AsynqPublisher{client: asynq.NewClient(opt), queue: queue}
}

func NewAlertTask(n Notification) (*asynq.Task, error) {
	payload, err := Encode(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOperatorAlert, payload), nil
}

func (p *AsynqPublisher) Publish(ctx context.Context, n Notification) error {
	task, err := NewAlertTask(n)
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(p.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	return err
}

func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}
