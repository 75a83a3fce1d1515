package booking

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

type ConsultantRepository interface {
	// GetConsultant returns nil, nil when the consultant does not exist.
	GetConsultant(ctx context.Context, id string) (*model.Consultant, error)
}

type CatalogRepository interface {
	GetConsultationType(ctx context.Context, id string) (*model.ConsultationType, error)
}

type BookingRepository interface {
	ListByConsultant(ctx context.Context, consultantID string) ([]model.Booking, error)
	Create(ctx context.Context, b *model.Booking) (string, error)
}

// Recorder receives booking outcomes for metrics.
type Recorder interface {
	BookingCreated()
	BookingRejected(reason string)
}

type Clock func() time.Time

type noopRecorder struct{}

func (noopRecorder) BookingCreated()        {}
func (noopRecorder) BookingRejected(string) {}
