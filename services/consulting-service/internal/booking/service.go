package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/storage"
)

var tracer = otel.Tracer("consulting-service/booking")

type Request struct {
	ClientID           string
	ConsultantID       string
	ConsultationTypeID string
	Date               string
	Time               string
	Notes              string
	DurationMinutes    *int
	SLAHours           *int
	Package            *model.PackageOverride
}

type Result struct {
	BookingID       string
	TicketNumber    string
	DurationMinutes int
	SLAHours        int
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.now = c
		}
	}
}

// WithWorkingWindow bounds the slots offered by ListOpenSlots.
func WithWorkingWindow(window scheduling.Slot, step int) Option {
	return func(s *Service) {
		if window.End > window.Start && step > 0 {
			s.window, s.step = window, step
		}
	}
}

type Service struct {
	consultants ConsultantRepository
	catalog     CatalogRepository
	bookings    BookingRepository
	logger      *slog.Logger
	recorder    Recorder
	now         Clock
	tickets     *TicketNumbers
	locks       *keyedLock
	window      scheduling.Slot
	step        int
}

func NewService(consultants ConsultantRepository, catalog CatalogRepository, bookings BookingRepository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		consultants: consultants,
		catalog:     catalog,
		bookings:    bookings,
		logger:      logger,
		recorder:    noopRecorder{},
		now:         time.Now,
		tickets:     &TicketNumbers{},
		locks:       newKeyedLock(),
		window:      scheduling.Slot{Start: 9 * 60, End: 17 * 60},
		step:        30,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAvailability loads the consultant and evaluates the weekday of date.
func (s *Service) CheckAvailability(ctx context.Context, consultantID, date string) (scheduling.DayAvailability, error) {
	day, err := scheduling.ParseDate(date)
	if err != nil {
		return scheduling.DayAvailability{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	c, err := s.loadConsultant(ctx, consultantID)
	if err != nil {
		return scheduling.DayAvailability{}, err
	}
	return scheduling.CheckDayAvailability(*c, day), nil
}

// CheckBookingConflict is read only: it reports whether the candidate slot
// overlaps an active booking of the same consultant on the same date.
func (s *Service) CheckBookingConflict(ctx context.Context, c scheduling.Candidate) (bool, error) {
	existing, err := s.bookings.ListByConsultant(ctx, c.ConsultantID)
	if err != nil {
		return false, fmt.Errorf("list bookings for consultant %s: %w", c.ConsultantID, err)
	}
	return scheduling.HasConflict(c, existing), nil
}

// ListOpenSlots offers free starts inside the working window. A day the
// consultant does not work yields no slots.
func (s *Service) ListOpenSlots(ctx context.Context, consultantID, date string, duration int) ([]scheduling.Slot, error) {
	if duration <= 0 {
		duration = scheduling.DefaultDurationMinutes
	}
	avail, err := s.CheckAvailability(ctx, consultantID, date)
	if err != nil || !avail.Available {
		return nil, err
	}
	existing, err := s.bookings.ListByConsultant(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for consultant %s: %w", consultantID, err)
	}
	busy := scheduling.BusySlots(consultantID, date, duration, existing)

	notBefore := -1
	if now := s.now().UTC(); now.Format(model.DateLayout) == date {
		notBefore = now.Hour()*60 + now.Minute()
	}
	return scheduling.OpenSlots(s.window, duration, s.step, busy, notBefore), nil
}

// Resolve previews the duration and SLA a booking would get.
func (s *Service) Resolve(ctx context.Context, consultationTypeID string, o scheduling.Override, pkg *model.PackageOverride) (scheduling.Resolution, error) {
	ct, err := s.catalog.GetConsultationType(ctx, consultationTypeID)
	if err != nil {
		return scheduling.Resolution{}, fmt.Errorf("load consultation type %s: %w", consultationTypeID, err)
	}
	if ct == nil {
		return scheduling.Resolution{}, ErrConsultationTypeNotFound
	}
	return scheduling.ResolveDurationAndSLA(o, ct, pkg), nil
}

// CreateBooking validates the request, checks the consultant's approval,
// weekday and slot, then persists a pending booking.
func (s *Service) CreateBooking(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "booking.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("consultant.id", req.ConsultantID),
		attribute.String("booking.date", req.Date),
	)

	res, err := s.createBooking(ctx, req)
	if err != nil {
		reason := rejectionReason(err)
		s.recorder.BookingRejected(reason)
		span.SetStatus(codes.Error, reason)
		if reason == "internal" {
			span.RecordError(err)
			s.logger.ErrorContext(ctx, "create booking failed", "err", err, "consultant_id", req.ConsultantID)
		} else {
			s.logger.InfoContext(ctx, "booking rejected", "reason", reason, "consultant_id", req.ConsultantID, "date", req.Date)
		}
		return Result{}, err
	}

	s.recorder.BookingCreated()
	span.SetAttributes(attribute.String("booking.ticket_number", res.TicketNumber))
	s.logger.InfoContext(ctx, "booking created",
		"booking_id", res.BookingID,
		"ticket_number", res.TicketNumber,
		"consultant_id", req.ConsultantID,
		"duration_minutes", res.DurationMinutes,
		"sla_hours", res.SLAHours,
	)
	return res, nil
}

func (s *Service) createBooking(ctx context.Context, req Request) (Result, error) {
	day, start, err := validate(req)
	if err != nil {
		return Result{}, err
	}
	// Stored bookings are compared by exact date and clock text.
	req.Date = day.Format(model.DateLayout)
	req.Time = scheduling.FormatClock(start)

	consultant, err := s.loadConsultant(ctx, req.ConsultantID)
	if err != nil {
		return Result{}, err
	}
	if !consultant.Approved() {
		return Result{}, fmt.Errorf("%w: status is %s", ErrConsultantUnavailable, consultant.Status)
	}

	if avail := scheduling.CheckDayAvailability(*consultant, day); !avail.Available {
		return Result{}, fmt.Errorf("%w: %s", ErrDayUnavailable, avail.Weekday)
	}

	ct, err := s.catalog.GetConsultationType(ctx, req.ConsultationTypeID)
	if err != nil {
		return Result{}, fmt.Errorf("load consultation type %s: %w", req.ConsultationTypeID, err)
	}
	if ct == nil {
		return Result{}, ErrConsultationTypeNotFound
	}
	resolved := scheduling.ResolveDurationAndSLA(scheduling.Override{
		DurationMinutes: req.DurationMinutes,
		SLAHours:        req.SLAHours,
	}, ct, req.Package)

	candidate := scheduling.Candidate{
		ConsultantID:    req.ConsultantID,
		Date:            req.Date,
		Slot:            scheduling.SlotAt(start, resolved.DurationMinutes),
		DurationMinutes: resolved.DurationMinutes,
	}

	unlock, err := s.locks.Lock(ctx, req.ConsultantID)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	conflict, err := s.CheckBookingConflict(ctx, candidate)
	if err != nil {
		return Result{}, err
	}
	if conflict {
		return Result{}, ErrSlotConflict
	}

	now := s.now().UTC()
	b := buildBooking(req, ct, resolved, s.tickets.Next(now), now)
	id, err := s.bookings.Create(ctx, &b)
	if errors.Is(err, storage.ErrSlotTaken) {
		return Result{}, ErrSlotConflict
	}
	if err != nil {
		return Result{}, fmt.Errorf("persist booking: %w", err)
	}
	return Result{
		BookingID:       id,
		TicketNumber:    b.TicketNumber,
		DurationMinutes: b.DurationMinutes,
		SLAHours:        b.SLAHours,
	}, nil
}

func (s *Service) loadConsultant(ctx context.Context, id string) (*model.Consultant, error) {
	c, err := s.consultants.GetConsultant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load consultant %s: %w", id, err)
	}
	if c == nil {
		return nil, ErrConsultantNotFound
	}
	return c, nil
}

func validate(req Request) (time.Time, int, error) {
	var problems []string
	if strings.TrimSpace(req.ClientID) == "" {
		problems = append(problems, "client_id is required")
	}
	if strings.TrimSpace(req.ConsultantID) == "" {
		problems = append(problems, "consultant_id is required")
	}
	if strings.TrimSpace(req.ConsultationTypeID) == "" {
		problems = append(problems, "consultation_type_id is required")
	}
	day, err := scheduling.ParseDate(req.Date)
	if err != nil {
		problems = append(problems, err.Error())
	}
	start, ok := scheduling.ValidClock(req.Time)
	if !ok {
		problems = append(problems, fmt.Sprintf("invalid time %q: want HH:MM", req.Time))
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		problems = append(problems, "duration_minutes must not be negative")
	}
	if req.SLAHours != nil && *req.SLAHours < 0 {
		problems = append(problems, "sla_hours must not be negative")
	}
	if len(problems) > 0 {
		return time.Time{}, 0, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return day, start, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConsultantNotFound):
		return "consultant_not_found"
	case errors.Is(err, ErrConsultantUnavailable):
		return "consultant_unavailable"
	case errors.Is(err, ErrDayUnavailable):
		return "day_unavailable"
	case errors.Is(err, ErrConsultationTypeNotFound):
		return "type_not_found"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	default:
		return "internal"
	}
}
