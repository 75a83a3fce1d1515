// Package seed loads consultants, catalog entries, bookings and tickets from a
// TOML fixture file.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/storage"
)

type Fixture struct {
	Consultants       []Consultant       `toml:"consultant"`
	ConsultationTypes []ConsultationType `toml:"consultation_type"`
	Bookings          []Booking          `toml:"booking"`
	Tickets           []Ticket           `toml:"ticket"`
}

type Consultant struct {
	ID           string                    `toml:"id"`
	UserID       string                    `toml:"user_id"`
	Status       string                    `toml:"status"`
	Weekdays     []string                  `toml:"weekdays"`
	Availability []model.AvailabilityEntry `toml:"availability"`
	SLA          *model.ConsultantSLA      `toml:"sla"`
}

type ConsultationType struct {
	ID              string  `toml:"id"`
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	SLAHours        int     `toml:"sla_hours"`
	BasePrice       float64 `toml:"base_price"`
}

type Booking struct {
	ClientID           string    `toml:"client_id"`
	ConsultantID       string    `toml:"consultant_id"`
	ConsultationTypeID string    `toml:"consultation_type_id"`
	Subject            string    `toml:"subject"`
	Price              float64   `toml:"price"`
	Date               string    `toml:"date"`
	Time               string    `toml:"time"`
	DurationMinutes    int       `toml:"duration_minutes"`
	SLAHours           int       `toml:"sla_hours"`
	Status             string    `toml:"status"`
	CreatedAt          time.Time `toml:"created_at"`
}

type Ticket struct {
	ID           string     `toml:"id"`
	TicketNumber string     `toml:"ticket_number"`
	ClientID     string     `toml:"client_id"`
	Status       string     `toml:"status"`
	CreatedAt    time.Time  `toml:"created_at"`
	Responses    []Response `toml:"response"`
}

type Response struct {
	AuthorID  string    `toml:"author_id"`
	Body      string    `toml:"body"`
	CreatedAt time.Time `toml:"created_at"`
}

func LoadFile(path string) (Fixture, error) {
	var f Fixture
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return f, f.validate()
}

func Decode(data string) (Fixture, error) {
	var f Fixture
	if _, err := toml.Decode(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, f.validate()
}

func (f Fixture) validate() error {
	for _, c := range f.Consultants {
		if c.ID == "" {
			return fmt.Errorf("consultant without id")
		}
		for _, day := range c.Weekdays {
			if _, err := scheduling.ParseWeekday(day); err != nil {
				return fmt.Errorf("consultant %s: %w", c.ID, err)
			}
		}
	}
	for _, t := range f.ConsultationTypes {
		if t.ID == "" {
			return fmt.Errorf("consultation type without id")
		}
	}
	return nil
}

// ToConsultant expands the weekdays shorthand into active availability
// entries and appends any explicit entries after them.
func (c Consultant) ToConsultant() model.Consultant {
	status := model.ConsultantStatus(c.Status)
	if status == "" {
		status = model.ConsultantApproved
	}
	var avail []model.AvailabilityEntry
	for _, day := range c.Weekdays {
		wd, _ := scheduling.ParseWeekday(day)
		avail = append(avail, model.AvailabilityEntry{Weekday: wd, Active: true})
	}
	avail = append(avail, c.Availability...)
	return model.Consultant{ID: c.ID, UserID: c.UserID, Status: status, Availability: avail, SLA: c.SLA}
}

func (b Booking) ToBooking() model.Booking {
	status := model.BookingStatus(b.Status)
	if status == "" {
		status = model.BookingPending
	}
	return model.Booking{
		ClientID:           b.ClientID,
		ConsultantID:       b.ConsultantID,
		ConsultationTypeID: b.ConsultationTypeID,
		Subject:            b.Subject,
		Price:              b.Price,
		ScheduledDate:      b.Date,
		ScheduledTime:      b.Time,
		DurationMinutes:    b.DurationMinutes,
		SLAHours:           b.SLAHours,
		Status:             status,
		CreatedAt:          b.CreatedAt.UTC(),
	}
}

// Apply loads the fixture into the in-memory store.
func (f Fixture) Apply(m *storage.Memory) {
	for _, c := range f.Consultants {
		m.PutConsultant(c.ToConsultant())
	}
	for _, t := range f.ConsultationTypes {
		m.PutConsultationType(model.ConsultationType(t))
	}
	for _, b := range f.Bookings {
		m.PutBooking(b.ToBooking())
	}
	for _, t := range f.Tickets {
		m.PutTicket(model.Ticket{
			ID:           t.ID,
			TicketNumber: t.TicketNumber,
			ClientID:     t.ClientID,
			Status:       ticketStatus(t.Status),
			CreatedAt:    t.CreatedAt.UTC(),
		})
		for _, r := range t.Responses {
			m.AddResponse(model.TicketResponse{TicketID: t.ID, AuthorID: r.AuthorID, Body: r.Body, CreatedAt: r.CreatedAt.UTC()})
		}
	}
}

// CatalogWriter is satisfied by storage.Postgres.
type CatalogWriter interface {
	UpsertConsultant(ctx context.Context, c model.Consultant) error
	UpsertConsultationType(ctx context.Context, t model.ConsultationType) error
}

// ApplyCatalog upserts consultants and consultation types. Bookings and
// tickets are left to the running service.
func (f Fixture) ApplyCatalog(ctx context.Context, w CatalogWriter) error {
	for _, c := range f.Consultants {
		if err := w.UpsertConsultant(ctx, c.ToConsultant()); err != nil {
			return fmt.Errorf("upsert consultant %s: %w", c.ID, err)
		}
	}
	for _, t := range f.ConsultationTypes {
		if err := w.UpsertConsultationType(ctx, model.ConsultationType(t)); err != nil {
			return fmt.Errorf("upsert consultation type %s: %w", t.ID, err)
		}
	}
	return nil
}

func ticketStatus(s string) model.TicketStatus {
	if s == "" {
		return model.TicketOpen
	}
	return model.TicketStatus(s)
}
