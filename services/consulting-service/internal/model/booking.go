package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no-show"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// PackageOverride carries fields copied from a purchased package.
// Nil pointers mean the package did not set the field.
type PackageOverride struct {
	Name     *string
	Price    *float64
	SLAHours *int
}

type Booking struct {
	ID                 string
	TicketNumber       string
	ClientID           string
	ConsultantID       string
	ConsultationTypeID string
	Subject            string
	Price              float64
	ScheduledDate      string
	ScheduledTime      string
	DurationMinutes    int
	SLAHours           int
	Status             BookingStatus
	PackageName        *string
	PackagePrice       *float64
	PackageSLAHours    *int
	Notes              string
	CreatedAt          time.Time
}

// Active reports whether the booking still holds its slot.
func (b Booking) Active() bool {
	switch b.Status {
	case BookingCancelled, BookingCompleted, BookingNoShow:
		return false
	default:
		return true
	}
}
