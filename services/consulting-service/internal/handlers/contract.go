package handlers

import (
	"context"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/analytics"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/booking"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
)

type BookingService interface {
	CheckAvailability(ctx context.Context, consultantID, date string) (scheduling.DayAvailability, error)
	CheckBookingConflict(ctx context.Context, c scheduling.Candidate) (bool, error)
	ListOpenSlots(ctx context.Context, consultantID, date string, duration int) ([]scheduling.Slot, error)
	Resolve(ctx context.Context, consultationTypeID string, o scheduling.Override, pkg *model.PackageOverride) (scheduling.Resolution, error)
	CreateBooking(ctx context.Context, req booking.Request) (booking.Result, error)
}

type SnapshotService interface {
	ComputeExecutiveSnapshot(ctx context.Context) analytics.Snapshot
}
