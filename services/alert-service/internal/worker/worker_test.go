package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/consultdesk/libs/notify"
	"github.com/md-rashed-zaman/consultdesk/services/alert-service/internal/alerts"
)

func TestHandleAlertTaskStoresPayload(t *testing.T) {
	store := alerts.NewMemory()
	h := HandleAlertTask(alerts.NewProcessor(store, slog.New(slog.NewTextHandler(io.Discard, nil))))

	task, err := notify.NewAlertTask(notify.Notification{Title: "2 executive anomalies detected", Severity: "high", Signature: "high:a|medium:b"})
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), task))

	stored := store.List()
	require.Len(t, stored, 1)
	assert.Equal(t, alerts.SourceAsynq, stored[0].Source)
}

func TestHandleAlertTaskSkipsRetryOnBadPayload(t *testing.T) {
	h := HandleAlertTask(alerts.NewProcessor(alerts.NewMemory(), slog.New(slog.NewTextHandler(io.Discard, nil))))
	err := h(context.Background(), asynq.NewTask(notify.TaskOperatorAlert, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
