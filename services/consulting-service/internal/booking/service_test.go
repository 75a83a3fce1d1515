package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/storage"
)

type countingRecorder struct {
	mu       sync.Mutex
	created  int
	rejected map[string]int
}

func (r *countingRecorder) BookingCreated() {
	r.mu.Lock()
	r.created++
	r.mu.Unlock()
}

func (r *countingRecorder) BookingRejected(reason string) {
	r.mu.Lock()
	if r.rejected == nil {
		r.rejected = map[string]int{}
	}
	r.rejected[reason]++
	r.mu.Unlock()
}

type fixture struct {
	store    *storage.Memory
	svc      *Service
	recorder *countingRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := storage.NewMemory()
	store.PutConsultant(model.Consultant{
		ID:     "7",
		Status: model.ConsultantApproved,
		Availability: []model.AvailabilityEntry{
			{Weekday: time.Sunday, Active: true},
			{Weekday: time.Monday, Active: true},
		},
	})
	store.PutConsultant(model.Consultant{ID: "8", Status: model.ConsultantPending})
	store.PutConsultationType(model.ConsultationType{ID: "hr-audit", Name: "HR audit", DurationMinutes: 45, SLAHours: 24, BasePrice: 150})

	rec := &countingRecorder{}
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := NewService(store, store, store, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithRecorder(rec),
		WithClock(func() time.Time { return now }),
	)
	return fixture{store: store, svc: svc, recorder: rec}
}

func request(date, clock string) Request {
	return Request{
		ClientID:           "client-1",
		ConsultantID:       "7",
		ConsultationTypeID: "hr-audit",
		Date:               date,
		Time:               clock,
	}
}

func TestCreateBooking_ResolvesTypeDefaults(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateBooking(context.Background(), request("2024-03-10", "10:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.BookingID)
	assert.Regexp(t, regexp.MustCompile(`^CB-\d+-\d{4}$`), res.TicketNumber)
	assert.Equal(t, 45, res.DurationMinutes)
	assert.Equal(t, 24, res.SLAHours)

	stored, _ := f.store.ListByConsultant(context.Background(), "7")
	require.Len(t, stored, 1)
	assert.Equal(t, model.BookingPending, stored[0].Status)
	assert.Equal(t, "HR audit", stored[0].Subject)
	assert.Equal(t, 150.0, stored[0].Price)
	assert.Nil(t, stored[0].PackageName)
	assert.Equal(t, 1, f.recorder.created)
}

func TestCreateBooking_CopiesPackageFields(t *testing.T) {
	f := newFixture(t)
	name, price, sla := "Starter pack", 99.5, 12
	req := request("2024-03-10", "12:00")
	req.Package = &model.PackageOverride{Name: &name, Price: &price, SLAHours: &sla}

	_, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	stored, _ := f.store.ListByConsultant(context.Background(), "7")
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].PackageName)
	assert.Equal(t, "Starter pack", *stored[0].PackageName)
	assert.Equal(t, 99.5, *stored[0].PackagePrice)
	// The type's SLA still wins over the package.
	assert.Equal(t, 24, stored[0].SLAHours)
}

func TestCreateBooking_RejectsUnapprovedConsultant(t *testing.T) {
	f := newFixture(t)
	req := request("2024-03-10", "10:00")
	req.ConsultantID = "8"

	_, err := f.svc.CreateBooking(context.Background(), req)
	require.ErrorIs(t, err, ErrConsultantUnavailable)
	assert.Equal(t, 1, f.recorder.rejected["consultant_unavailable"])
}

func TestCreateBooking_RejectsOffDay(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBooking(context.Background(), request("2024-03-12", "10:00"))
	require.ErrorIs(t, err, ErrDayUnavailable)
}

func TestCreateBooking_RejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sixty := 60
	first := request("2024-03-10", "10:00")
	first.DurationMinutes = &sixty
	_, err := f.svc.CreateBooking(ctx, first)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, request("2024-03-10", "10:30"))
	require.ErrorIs(t, err, ErrSlotConflict)

	_, err = f.svc.CreateBooking(ctx, request("2024-03-10", "11:00"))
	require.NoError(t, err, "adjacent slot must be accepted")
}

func TestCreateBooking_StoresCanonicalDateAndTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, request(" 2024-03-10 ", "9:5"))
	require.NoError(t, err)

	stored, _ := f.store.ListByConsultant(ctx, "7")
	require.Len(t, stored, 1)
	assert.Equal(t, "2024-03-10", stored[0].ScheduledDate)
	assert.Equal(t, "09:05", stored[0].ScheduledTime)

	_, err = f.svc.CreateBooking(ctx, request("2024-03-10", "09:30"))
	require.ErrorIs(t, err, ErrSlotConflict)

	_, err = f.svc.CreateBooking(ctx, request("2024-03-10 ", "09:05"))
	require.ErrorIs(t, err, ErrSlotConflict)
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	neg := -5
	cases := map[string]Request{
		"missing client": {ConsultantID: "7", ConsultationTypeID: "hr-audit", Date: "2024-03-10", Time: "10:00"},
		"bad date":       {ClientID: "c", ConsultantID: "7", ConsultationTypeID: "hr-audit", Date: "10.03.2024", Time: "10:00"},
		"bad time":       {ClientID: "c", ConsultantID: "7", ConsultationTypeID: "hr-audit", Date: "2024-03-10", Time: "25:00"},
		"negative":       {ClientID: "c", ConsultantID: "7", ConsultationTypeID: "hr-audit", Date: "2024-03-10", Time: "10:00", DurationMinutes: &neg},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateBooking_UnknownReferences(t *testing.T) {
	f := newFixture(t)

	req := request("2024-03-10", "10:00")
	req.ConsultantID = "missing"
	_, err := f.svc.CreateBooking(context.Background(), req)
	require.ErrorIs(t, err, ErrConsultantNotFound)

	req = request("2024-03-10", "10:00")
	req.ConsultationTypeID = "missing"
	_, err = f.svc.CreateBooking(context.Background(), req)
	require.ErrorIs(t, err, ErrConsultationTypeNotFound)
}

func TestCreateBooking_ConcurrentRequestsForSameSlot(t *testing.T) {
	f := newFixture(t)
	const workers = 8

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateBooking(context.Background(), request("2024-03-10", "14:00"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		require.True(t, errors.Is(err, ErrSlotConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)
}

func TestCheckBookingConflict(t *testing.T) {
	f := newFixture(t)
	f.store.PutBooking(model.Booking{ConsultantID: "7", ScheduledDate: "2024-03-10", ScheduledTime: "10:00", DurationMinutes: 60, Status: model.BookingConfirmed})

	start, _ := scheduling.ParseClock("10:30")
	conflict, err := f.svc.CheckBookingConflict(context.Background(), scheduling.Candidate{
		ConsultantID: "7", Date: "2024-03-10", Slot: scheduling.SlotAt(start, 60), DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.CheckAvailability(context.Background(), "7", "2024-03-12")
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, time.Tuesday, got.Weekday)

	_, err = f.svc.CheckAvailability(context.Background(), "nobody", "2024-03-12")
	require.ErrorIs(t, err, ErrConsultantNotFound)
}

func TestListOpenSlots(t *testing.T) {
	f := newFixture(t)
	f.store.PutBooking(model.Booking{ConsultantID: "7", ScheduledDate: "2024-03-10", ScheduledTime: "09:00", DurationMinutes: 120, Status: model.BookingConfirmed})

	slots, err := f.svc.ListOpenSlots(context.Background(), "7", "2024-03-10", 60)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "11:00", scheduling.FormatClock(slots[0].Start))
	assert.Equal(t, "16:00", scheduling.FormatClock(slots[len(slots)-1].Start))

	off, err := f.svc.ListOpenSlots(context.Background(), "7", "2024-03-12", 60)
	require.NoError(t, err)
	assert.Empty(t, off)
}

func TestTicketNumbersAreUniqueWithinAMillisecond(t *testing.T) {
	var g TicketNumbers
	now := time.UnixMilli(1710064800000)
	a, b := g.Next(now), g.Next(now)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "CB-1710064800000-0001", a)

	g.seq.Store(9999)
	c, d := g.Next(now), g.Next(now)
	assert.Equal(t, "CB-1710064800000-10000", c)
	assert.Equal(t, "CB-1710064800000-10001", d)
}

func TestKeyedLockHonoursContext(t *testing.T) {
	l := newKeyedLock()
	unlock, err := l.Lock(context.Background(), "7")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "7")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock2, err := l.Lock(context.Background(), "7")
	require.NoError(t, err)
	unlock2()
	assert.Empty(t, l.locks)
}
