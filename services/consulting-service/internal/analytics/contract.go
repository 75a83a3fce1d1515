package analytics

import (
	"context"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

type BookingSource interface {
	ListAll(ctx context.Context) ([]model.Booking, error)
}

type TicketSource interface {
	ListTickets(ctx context.Context) ([]model.Ticket, error)
	// ListResponses returns the ticket's responses oldest first.
	ListResponses(ctx context.Context, ticketID string) ([]model.TicketResponse, error)
}

// SnapshotCache is an optional short lived cache of computed snapshots.
type SnapshotCache interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Store(ctx context.Context, s Snapshot) error
}

// Recorder receives analytics outcomes for metrics.
type Recorder interface {
	AnomaliesDetected(n int)
	NotificationPublished(ok bool)
	SnapshotDegraded()
}

type noopRecorder struct{}

func (noopRecorder) AnomaliesDetected(int)      {}
func (noopRecorder) NotificationPublished(bool) {}
func (noopRecorder) SnapshotDegraded()          {}
