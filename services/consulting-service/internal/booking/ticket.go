package booking

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
)

// TicketNumbers mints human facing booking numbers. The counter keeps numbers
// unique within one process even when two bookings share a millisecond.
type TicketNumbers struct {
	seq atomic.Uint64
}

func (g *TicketNumbers) Next(now time.Time) string {
	n := g.seq.Add(1)
	return fmt.Sprintf("CB-%d-%04d", now.UnixMilli(), n)
}

// buildBooking merges the request with resolved values and catalog fields.
func buildBooking(req Request, ct *model.ConsultationType, res scheduling.Resolution, ticket string, now time.Time) model.Booking {
	b := model.Booking{
		TicketNumber:       ticket,
		ClientID:           req.ClientID,
		ConsultantID:       req.ConsultantID,
		ConsultationTypeID: req.ConsultationTypeID,
		Subject:            ct.Name,
		Price:              ct.BasePrice,
		ScheduledDate:      req.Date,
		ScheduledTime:      req.Time,
		DurationMinutes:    res.DurationMinutes,
		SLAHours:           res.SLAHours,
		Status:             model.BookingPending,
		Notes:              req.Notes,
		CreatedAt:          now,
	}
	if req.Package != nil {
		b.PackageName = req.Package.Name
		b.PackagePrice = req.Package.Price
		b.PackageSLAHours = req.Package.SLAHours
	}
	return b
}
