package analytics

import (
	"math"
	"time"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

// TimeToFillTargetDays is the benchmark timeToFillDelta is measured against.
const TimeToFillTargetDays = 25

type Metrics struct {
	TimeToFillDays             float64 `json:"time_to_fill_days"`
	TimeToFillDelta            int     `json:"time_to_fill_delta"`
	TimeToResolveHours         float64 `json:"time_to_resolve_hours"`
	ConsultingRevenue          float64 `json:"consulting_revenue"`
	OfferAcceptanceRate        int     `json:"offer_acceptance_rate"`
	PendingTicketCount         int     `json:"pending_ticket_count"`
	PendingConsultationCount   int     `json:"pending_consultation_count"`
	CompletedConsultationCount int     `json:"completed_consultation_count"`
	ConsultationCount          int     `json:"consultation_count"`
}

// Aggregate derives the executive KPIs. responses maps ticket id to that
// ticket's responses, oldest first. Values that cannot be measured are left
// out of averages; an empty average is 0.
func Aggregate(bookings []model.Booking, tickets []model.Ticket, responses map[string][]model.TicketResponse) Metrics {
	var m Metrics

	m.ConsultationCount = len(bookings)
	var fill mean
	for _, b := range bookings {
		switch b.Status {
		case model.BookingPending:
			m.PendingConsultationCount++
		case model.BookingCompleted:
			m.CompletedConsultationCount++
		}
		m.ConsultingRevenue += finiteOrZero(b.Price)
		if days, ok := daysToFill(b); ok {
			fill.add(days)
		}
	}
	if fill.n > 0 {
		avg := fill.value()
		m.TimeToFillDays = round1(avg)
		m.TimeToFillDelta = int(math.Round(avg - TimeToFillTargetDays))
	}
	if total := len(bookings); total > 0 {
		m.OfferAcceptanceRate = int(math.Round(100 * float64(m.CompletedConsultationCount) / float64(total)))
	}
	m.ConsultingRevenue = round2(m.ConsultingRevenue)

	var resolve mean
	for _, t := range tickets {
		if t.Status != model.TicketClosed {
			m.PendingTicketCount++
		}
		rs := responses[t.ID]
		if len(rs) == 0 || t.CreatedAt.IsZero() {
			continue
		}
		hours := rs[len(rs)-1].CreatedAt.Sub(t.CreatedAt).Hours()
		if isFinite(hours) {
			resolve.add(hours)
		}
	}
	if resolve.n > 0 {
		m.TimeToResolveHours = round1(resolve.value())
	}
	return m
}

func daysToFill(b model.Booking) (float64, bool) {
	if b.CreatedAt.IsZero() {
		return 0, false
	}
	scheduled, err := time.ParseInLocation(model.DateLayout, b.ScheduledDate, time.UTC)
	if err != nil {
		return 0, false
	}
	days := scheduled.Sub(b.CreatedAt).Hours() / 24
	return days, isFinite(days)
}

type mean struct {
	sum float64
	n   int
}

func (a *mean) add(v float64) {
	a.sum += v
	a.n++
}

func (a mean) value() float64 {
	return a.sum / float64(a.n)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
