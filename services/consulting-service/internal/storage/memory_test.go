package storage

import (
	"context"
	"testing"
	"time"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryConsultantCopies(t *testing.T) {
	m := NewMemory()
	m.PutConsultant(model.Consultant{
		ID:           "c-1",
		Status:       model.ConsultantApproved,
		Availability: []model.AvailabilityEntry{{Weekday: time.Monday, Active: true}},
	})

	c, err := m.GetConsultant(context.Background(), "c-1")
	require.NoError(t, err)
	c.Availability[0].Active = false

	again, _ := m.GetConsultant(context.Background(), "c-1")
	assert.True(t, again.Availability[0].Active)

	missing, err := m.GetConsultant(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryBookingsByConsultant(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, err := m.Create(ctx, &model.Booking{ConsultantID: "c-1", ScheduledDate: "2024-03-10"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	m.PutBooking(model.Booking{ConsultantID: "c-2"})

	mine, _ := m.ListByConsultant(ctx, "c-1")
	require.Len(t, mine, 1)
	assert.Equal(t, id, mine[0].ID)

	all, _ := m.ListAll(ctx)
	assert.Len(t, all, 2)
}

func TestMemoryResponsesOrdered(t *testing.T) {
	m := NewMemory()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m.AddResponse(model.TicketResponse{TicketID: "t-1", CreatedAt: base.Add(2 * time.Hour)})
	m.AddResponse(model.TicketResponse{TicketID: "t-1", CreatedAt: base})

	got, err := m.ListResponses(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.Before(got[1].CreatedAt))
}
