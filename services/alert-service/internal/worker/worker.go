// Package worker runs the asynq server that drains operator alert tasks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/md-rashed-zaman/consultdesk/libs/notify"
	"github.com/md-rashed-zaman/consultdesk/services/alert-service/internal/alerts"
)

type Config struct {
	Queue       string
	Concurrency int
}

type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

func New(redis asynq.RedisClientOpt, cfg Config, processor *alerts.Processor, logger *slog.Logger) *Worker {
	if cfg.Queue == "" {
		cfg.Queue = "alerts"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TaskOperatorAlert, HandleAlertTask(processor))
	return &Worker{srv: srv, mux: mux, logger: logger}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	w.logger.Info("alert worker started")
	<-ctx.Done()
	w.srv.Shutdown()
	w.logger.Info("alert worker stopped")
	return nil
}

// HandleAlertTask stores the task payload. Invalid payloads are not retried.
func HandleAlertTask(processor *alerts.Processor) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		id, _ := asynq.GetTaskID(ctx)
		err := processor.Handle(ctx, alerts.SourceAsynq, id, task.Payload())
		if errors.Is(err, alerts.ErrInvalidAlert) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
}
