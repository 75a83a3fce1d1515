package model

import "time"

type ConsultantStatus string

const (
	ConsultantPending  ConsultantStatus = "pending"
	ConsultantApproved ConsultantStatus = "approved"
	ConsultantRejected ConsultantStatus = "rejected"
)

// AvailabilityEntry marks one weekday in a consultant's weekly pattern.
type AvailabilityEntry struct {
	Weekday time.Weekday `json:"weekday" toml:"weekday"`
	Active  bool         `json:"active" toml:"active"`
}

type ConsultantSLA struct {
	ResponseHours int `json:"response_hours" toml:"response_hours"`
	DeliveryHours int `json:"delivery_hours" toml:"delivery_hours"`
}

type Consultant struct {
	ID           string
	UserID       string
	Status       ConsultantStatus
	Availability []AvailabilityEntry
	SLA          *ConsultantSLA
	CreatedAt    time.Time
}

func (c Consultant) Approved() bool {
	return c.Status == ConsultantApproved
}

// ConsultationType is a read-only catalog entry.
type ConsultationType struct {
	ID              string
	Name            string
	DurationMinutes int
	SLAHours        int
	BasePrice       float64
}
