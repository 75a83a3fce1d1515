package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

// Memory is an in-process store used by tests, the CLI and STORAGE_DRIVER=memory.
// Lookups return copies so callers cannot mutate stored rows.
type Memory struct {
	mu          sync.RWMutex
	consultants map[string]model.Consultant
	types       map[string]model.ConsultationType
	bookings    []model.Booking
	tickets     []model.Ticket
	responses   map[string][]model.TicketResponse
}

func NewMemory() *Memory {
	return &Memory{
		consultants: map[string]model.Consultant{},
		types:       map[string]model.ConsultationType{},
		responses:   map[string][]model.TicketResponse{},
	}
}

func (m *Memory) PutConsultant(c model.Consultant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Availability = append([]model.AvailabilityEntry(nil), c.Availability...)
	m.consultants[c.ID] = c
}

func (m *Memory) PutConsultationType(t model.ConsultationType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[t.ID] = t
}

// PutBooking stores b as is, keeping its id and timestamps.
func (m *Memory) PutBooking(b model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.bookings = append(m.bookings, b)
}

func (m *Memory) PutTicket(t model.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.tickets = append(m.tickets, t)
}

func (m *Memory) AddResponse(r model.TicketResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	list := append(m.responses[r.TicketID], r)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	m.responses[r.TicketID] = list
}

func (m *Memory) GetConsultant(_ context.Context, id string) (*model.Consultant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consultants[id]
	if !ok {
		return nil, nil
	}
	c.Availability = append([]model.AvailabilityEntry(nil), c.Availability...)
	return &c, nil
}

func (m *Memory) GetConsultationType(_ context.Context, id string) (*model.ConsultationType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) ListByConsultant(_ context.Context, consultantID string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.ConsultantID == consultantID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) ListAll(_ context.Context) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Booking(nil), m.bookings...), nil
}

func (m *Memory) Create(_ context.Context, b *model.Booking) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.NewString()
	m.bookings = append(m.bookings, *b)
	return b.ID, nil
}

func (m *Memory) ListTickets(_ context.Context) ([]model.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Ticket(nil), m.tickets...), nil
}

func (m *Memory) ListResponses(_ context.Context, ticketID string) ([]model.TicketResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.TicketResponse(nil), m.responses[ticketID]...), nil
}
