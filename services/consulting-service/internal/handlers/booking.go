package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/md-rashed-zaman/consultdesk/libs/httpx"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/booking"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
)

type BookingHandler struct {
	svc    BookingService
	logger *slog.Logger
}

func NewBookingHandler(svc BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type packageBody struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	SLAHours *int     `json:"sla_hours"`
}

func (p *packageBody) toModel() *model.PackageOverride {
	if p == nil {
		return nil
	}
	return &model.PackageOverride{Name: p.Name, Price: p.Price, SLAHours: p.SLAHours}
}

type createBookingRequest struct {
	ClientID           string       `json:"client_id"`
	ConsultantID       string       `json:"consultant_id"`
	ConsultationTypeID string       `json:"consultation_type_id"`
	Date               string       `json:"date"`
	Time               string       `json:"time"`
	Notes              string       `json:"notes"`
	DurationMinutes    *int         `json:"duration_minutes"`
	SLAHours           *int         `json:"sla_hours"`
	Package            *packageBody `json:"package"`
}

type createBookingResponse struct {
	BookingID       string `json:"booking_id"`
	TicketNumber    string `json:"ticket_number"`
	DurationMinutes int    `json:"duration_minutes"`
	SLAHours        int    `json:"sla_hours"`
}

type resolveRequest struct {
	ConsultationTypeID string       `json:"consultation_type_id"`
	DurationMinutes    *int         `json:"duration_minutes"`
	SLAHours           *int         `json:"sla_hours"`
	Package            *packageBody `json:"package"`
}

type availabilityResponse struct {
	ConsultantID string `json:"consultant_id"`
	Date         string `json:"date"`
	Weekday      string `json:"weekday"`
	Available    bool   `json:"available"`
}

type conflictResponse struct {
	ConsultantID    string `json:"consultant_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Conflict        bool   `json:"conflict"`
}

type slotItem struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type slotsResponse struct {
	ConsultantID    string     `json:"consultant_id"`
	Date            string     `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	Slots           []slotItem `json:"slots"`
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["consultantId"]
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		httpx.WriteError(w, http.StatusBadRequest, "date is required")
		return
	}
	day, err := h.svc.CheckAvailability(r.Context(), id, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, availabilityResponse{
		ConsultantID: id,
		Date:         date,
		Weekday:      day.WeekdayName(),
		Available:    day.Available,
	})
}

func (h *BookingHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["consultantId"]
	q := r.URL.Query()
	date, clock := strings.TrimSpace(q.Get("date")), strings.TrimSpace(q.Get("time"))
	if _, err := scheduling.ParseDate(date); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid date")
		return
	}
	start, ok := scheduling.ValidClock(clock)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid time")
		return
	}
	duration, err := positiveInt(q.Get("duration_minutes"), scheduling.DefaultDurationMinutes)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid duration_minutes")
		return
	}

	conflict, err := h.svc.CheckBookingConflict(r.Context(), scheduling.Candidate{
		ConsultantID:    id,
		Date:            date,
		Slot:            scheduling.SlotAt(start, duration),
		DurationMinutes: duration,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, conflictResponse{
		ConsultantID:    id,
		Date:            date,
		Time:            clock,
		DurationMinutes: duration,
		Conflict:        conflict,
	})
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["consultantId"]
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	duration, err := positiveInt(q.Get("duration_minutes"), scheduling.DefaultDurationMinutes)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid duration_minutes")
		return
	}
	slots, err := h.svc.ListOpenSlots(r.Context(), id, date, duration)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{Start: scheduling.FormatClock(s.Start), End: scheduling.FormatClock(s.End)})
	}
	httpx.WriteJSON(w, http.StatusOK, slotsResponse{ConsultantID: id, Date: date, DurationMinutes: duration, Slots: items})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := h.svc.CreateBooking(r.Context(), booking.Request{
		ClientID:           strings.TrimSpace(req.ClientID),
		ConsultantID:       strings.TrimSpace(req.ConsultantID),
		ConsultationTypeID: strings.TrimSpace(req.ConsultationTypeID),
		Date:               strings.TrimSpace(req.Date),
		Time:               strings.TrimSpace(req.Time),
		Notes:              req.Notes,
		DurationMinutes:    req.DurationMinutes,
		SLAHours:           req.SLAHours,
		Package:            req.Package.toModel(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, createBookingResponse{
		BookingID:       res.BookingID,
		TicketNumber:    res.TicketNumber,
		DurationMinutes: res.DurationMinutes,
		SLAHours:        res.SLAHours,
	})
}

func (h *BookingHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.ConsultationTypeID) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "consultation_type_id is required")
		return
	}
	res, err := h.svc.Resolve(r.Context(), strings.TrimSpace(req.ConsultationTypeID),
		scheduling.Override{DurationMinutes: req.DurationMinutes, SLAHours: req.SLAHours},
		req.Package.toModel())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *BookingHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "err", err, "path", r.URL.Path)
		httpx.WriteError(w, status, "internal error")
		return
	}
	httpx.WriteError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrInvalidInput), errors.Is(err, booking.ErrConsultantUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrConsultantNotFound), errors.Is(err, booking.ErrConsultationTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, booking.ErrDayUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func positiveInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("want a positive integer")
	}
	return n, nil
}
