package outbox

import (
	"encoding/json"
	"fmt"
)

const (
	AggregateBooking    = "consultation_booking"
	EventBookingCreated = "consulting.booking.created.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// BookingCreated is the payload of consulting.booking.created.v1.
type BookingCreated struct {
	BookingID       string `json:"booking_id"`
	TicketNumber    string `json:"ticket_number"`
	ClientID        string `json:"client_id"`
	ConsultantID    string `json:"consultant_id"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
	DurationMinutes int    `json:"duration_minutes"`
	SLAHours        int    `json:"sla_hours"`
}

func NewBookingCreated(p BookingCreated) (Event, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return Event{}, fmt.Errorf("marshal booking created: %w", err)
	}
	return Event{
		AggregateType: AggregateBooking,
		AggregateID:   p.BookingID,
		EventType:     EventBookingCreated,
		Payload:       payload,
	}, nil
}
