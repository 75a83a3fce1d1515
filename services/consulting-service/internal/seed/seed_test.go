package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/storage"
)

func TestLoadFileSampleFixture(t *testing.T) {
	f, err := LoadFile(filepath.Join("..", "..", "testdata", "fixture.toml"))
	require.NoError(t, err)
	require.Len(t, f.Consultants, 3)
	require.Len(t, f.ConsultationTypes, 2)

	store := storage.NewMemory()
	f.Apply(store)
	ctx := context.Background()

	c, err := store.GetConsultant(ctx, "c-100")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Approved())
	require.Len(t, c.Availability, 5)
	assert.Equal(t, time.Monday, c.Availability[0].Weekday)
	require.NotNil(t, c.SLA)
	assert.Equal(t, 48, c.SLA.DeliveryHours)

	pending, _ := store.GetConsultant(ctx, "c-300")
	assert.Equal(t, model.ConsultantPending, pending.Status)

	bookings, _ := store.ListAll(ctx)
	require.Len(t, bookings, 2)
	assert.Equal(t, model.BookingCompleted, bookings[0].Status)

	responses, _ := store.ListResponses(ctx, "t-1")
	require.Len(t, responses, 1)
	assert.Equal(t, 6*time.Hour, responses[0].CreatedAt.Sub(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestDecodeRejectsUnknownWeekday(t *testing.T) {
	_, err := Decode(`
[[consultant]]
id = "c-1"
weekdays = ["funday"]
`)
	require.Error(t, err)
}

func TestDecodeDefaults(t *testing.T) {
	f, err := Decode(`
[[consultant]]
id = "c-1"

[[booking]]
consultant_id = "c-1"
date = "2024-03-11"
time = "09:00"
`)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultantApproved, f.Consultants[0].ToConsultant().Status)
	assert.Equal(t, model.BookingPending, f.Bookings[0].ToBooking().Status)
}

type recordingWriter struct {
	consultants []string
	types       []string
	err         error
}

func (w *recordingWriter) UpsertConsultant(_ context.Context, c model.Consultant) error {
	w.consultants = append(w.consultants, c.ID)
	return w.err
}

func (w *recordingWriter) UpsertConsultationType(_ context.Context, t model.ConsultationType) error {
	w.types = append(w.types, t.ID)
	return nil
}

func TestApplyCatalog(t *testing.T) {
	f, err := LoadFile(filepath.Join("..", "..", "testdata", "fixture.toml"))
	require.NoError(t, err)

	w := &recordingWriter{}
	require.NoError(t, f.ApplyCatalog(context.Background(), w))
	assert.Equal(t, []string{"c-100", "c-200", "c-300"}, w.consultants)
	assert.Equal(t, []string{"hr-audit", "policy-review"}, w.types)

	failing := &recordingWriter{err: errors.New("db down")}
	require.Error(t, f.ApplyCatalog(context.Background(), failing))
}
