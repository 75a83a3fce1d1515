package model

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in-progress"
	TicketClosed     TicketStatus = "closed"
)

type Ticket struct {
	ID           string
	TicketNumber string
	ClientID     string
	Status       TicketStatus
	CreatedAt    time.Time
}

type TicketResponse struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}
