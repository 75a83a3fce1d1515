package scheduling

import "github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"

// Candidate is a requested slot for one consultant on one calendar day.
type Candidate struct {
	ConsultantID    string
	Date            string
	Slot            Slot
	DurationMinutes int
}

// BusySlots returns the slots held by active bookings of consultantID on date.
// Bookings with an unparseable time are skipped. A booking without a stored
// duration is assumed to last fallbackDuration minutes.
func BusySlots(consultantID, date string, fallbackDuration int, bookings []model.Booking) []Slot {
	var busy []Slot
	for _, b := range bookings {
		if b.ConsultantID != consultantID || b.ScheduledDate != date || !b.Active() {
			continue
		}
		start, ok := ParseClock(b.ScheduledTime)
		if !ok {
			continue
		}
		duration := b.DurationMinutes
		if duration <= 0 {
			duration = fallbackDuration
		}
		busy = append(busy, SlotAt(start, duration))
	}
	return busy
}

// HasConflict reports whether the candidate overlaps any active booking.
func HasConflict(c Candidate, bookings []model.Booking) bool {
	return overlapsAny(c.Slot, BusySlots(c.ConsultantID, c.Date, c.DurationMinutes, bookings))
}

func overlapsAny(s Slot, busy []Slot) bool {
	for _, b := range busy {
		if s.Overlaps(b) {
			return true
		}
	}
	return false
}
