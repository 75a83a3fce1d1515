package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
)

var tracer = otel.Tracer("consulting-service/analytics")

const defaultResponseFanout = 8

type Snapshot struct {
	Metrics     Metrics   `json:"metrics"`
	Anomalies   []Anomaly `json:"anomalies"`
	Degraded    bool      `json:"degraded"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Option func(*Service)

func WithCache(c SnapshotCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
			if s.dispatcher != nil {
				s.dispatcher.SetRecorder(r)
			}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithResponseFanout(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanout = n
		}
	}
}

type Service struct {
	bookings   BookingSource
	tickets    TicketSource
	dispatcher *Dispatcher
	cache      SnapshotCache
	logger     *slog.Logger
	recorder   Recorder
	now        func() time.Time
	fanout     int
}

func NewService(bookings BookingSource, tickets TicketSource, dispatcher *Dispatcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		bookings:   bookings,
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		recorder:   noopRecorder{},
		now:        time.Now,
		fanout:     defaultResponseFanout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeExecutiveSnapshot never fails: when the data cannot be loaded it
// returns a zeroed snapshot marked Degraded and skips dispatch.
func (s *Service) ComputeExecutiveSnapshot(ctx context.Context) Snapshot {
	ctx, span := tracer.Start(ctx, "analytics.ComputeExecutiveSnapshot")
	defer span.End()

	if s.cache != nil {
		cached, ok, err := s.cache.Load(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot cache read failed", "err", err)
		} else if ok {
			span.SetAttributes(attribute.Bool("snapshot.cached", true))
			return cached
		}
	}

	bookings, tickets, responses, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.recorder.SnapshotDegraded()
		s.logger.ErrorContext(ctx, "executive snapshot degraded", "err", err)
		return Fallback(s.now())
	}

	metrics := Aggregate(bookings, tickets, responses)
	anomalies := DetectAnomalies(metrics)
	s.recorder.AnomaliesDetected(len(anomalies))
	span.SetAttributes(
		attribute.Int("snapshot.bookings", len(bookings)),
		attribute.Int("snapshot.tickets", len(tickets)),
		attribute.Int("snapshot.anomalies", len(anomalies)),
	)
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, anomalies)
	}

	snap := Snapshot{Metrics: metrics, Anomalies: anomalies, GeneratedAt: s.now().UTC()}
	if s.cache != nil {
		if err := s.cache.Store(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "snapshot cache write failed", "err", err)
		}
	}
	return snap
}

// Fallback is the zeroed snapshot served when the data cannot be read.
func Fallback(now time.Time) Snapshot {
	return Snapshot{Anomalies: []Anomaly{}, Degraded: true, GeneratedAt: now.UTC()}
}

func (s *Service) load(ctx context.Context) ([]model.Booking, []model.Ticket, map[string][]model.TicketResponse, error) {
	var (
		bookings []model.Booking
		tickets  []model.Ticket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.bookings.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tickets, err = s.tickets.ListTickets(gctx)
		if err != nil {
			return fmt.Errorf("list tickets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	var mu sync.Mutex
	responses := make(map[string][]model.TicketResponse, len(tickets))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for _, t := range tickets {
		id := t.ID
		g.Go(func() error {
			rs, err := s.tickets.ListResponses(gctx, id)
			if err != nil {
				return fmt.Errorf("list responses for ticket %s: %w", id, err)
			}
			mu.Lock()
			responses[id] = rs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return bookings, tickets, responses, nil
}
