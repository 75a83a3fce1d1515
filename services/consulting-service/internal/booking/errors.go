package booking

import "errors"

var (
	// ErrInvalidInput is returned when the request is malformed.
	ErrInvalidInput = errors.New("booking: invalid input")

	ErrConsultantNotFound       = errors.New("booking: consultant not found")
	ErrConsultationTypeNotFound = errors.New("booking: consultation type not found")

	// ErrConsultantUnavailable is returned when the consultant is not approved.
	ErrConsultantUnavailable = errors.New("booking: consultant unavailable")

	// ErrDayUnavailable is returned when the consultant does not work that weekday.
	ErrDayUnavailable = errors.New("booking: consultant does not work on this day")

	// ErrSlotConflict is returned when the slot overlaps an active booking.
	ErrSlotConflict = errors.New("booking: slot conflicts with an existing booking")
)
