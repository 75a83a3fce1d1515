package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/consultdesk/libs/db"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/model"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/outbox"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookingColumns = []string{
	"id::text", "ticket_number", "client_id", "consultant_id", "consultation_type_id", "subject", "price",
	"scheduled_date", "scheduled_time", "duration_minutes", "sla_hours", "status",
	"package_name", "package_price", "package_sla_hours", "notes", "created_at",
}

// Postgres implements every repository the consulting service consumes.
type Postgres struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewPostgres(pool *db.Pool, outboxRepo *outbox.Repository) *Postgres {
	return &Postgres{pool: pool, outbox: outboxRepo}
}

func (p *Postgres) GetConsultant(ctx context.Context, id string) (*model.Consultant, error) {
	query, args, err := psql.Select("id", "user_id", "status", "availability", "sla_response_hours", "sla_delivery_hours", "created_at").
		From("consultants").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConsultant: %v", ErrBuildQuery, err)
	}

	var (
		c            model.Consultant
		status       string
		availability []byte
		respHours    *int
		delivHours   *int
	)
	err = p.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.UserID, &status, &availability, &respHours, &delivHours, &c.CreatedAt)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Status = model.ConsultantStatus(status)
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &c.Availability); err != nil {
			return nil, fmt.Errorf("decode availability for consultant %s: %w", id, err)
		}
	}
	if respHours != nil || delivHours != nil {
		c.SLA = &model.ConsultantSLA{}
		if respHours != nil {
			c.SLA.ResponseHours = *respHours
		}
		if delivHours != nil {
			c.SLA.DeliveryHours = *delivHours
		}
	}
	return &c, nil
}

func (p *Postgres) UpsertConsultant(ctx context.Context, c model.Consultant) error {
	availability, err := json.Marshal(c.Availability)
	if err != nil {
		return err
	}
	if c.Availability == nil {
		availability = []byte("[]")
	}
	var respHours, delivHours *int
	if c.SLA != nil {
		respHours, delivHours = &c.SLA.ResponseHours, &c.SLA.DeliveryHours
	}
	query, args, err := psql.Insert("consultants").
		Columns("id", "user_id", "status", "availability", "sla_response_hours", "sla_delivery_hours").
		Values(c.ID, c.UserID, string(c.Status), availability, respHours, delivHours).
		Suffix(`ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, status = EXCLUDED.status,
			availability = EXCLUDED.availability, sla_response_hours = EXCLUDED.sla_response_hours,
			sla_delivery_hours = EXCLUDED.sla_delivery_hours`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertConsultant: %v", ErrBuildQuery, err)
	}
	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

func (p *Postgres) GetConsultationType(ctx context.Context, id string) (*model.ConsultationType, error) {
	query, args, err := psql.Select("id", "name", "duration_minutes", "sla_hours", "base_price::float8").
		From("consultation_types").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConsultationType: %v", ErrBuildQuery, err)
	}
	var t model.ConsultationType
	err = p.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Name, &t.DurationMinutes, &t.SLAHours, &t.BasePrice)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) UpsertConsultationType(ctx context.Context, t model.ConsultationType) error {
	query, args, err := psql.Insert("consultation_types").
		Columns("id", "name", "duration_minutes", "sla_hours", "base_price").
		Values(t.ID, t.Name, t.DurationMinutes, t.SLAHours, t.BasePrice).
		Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, duration_minutes = EXCLUDED.duration_minutes,
			sla_hours = EXCLUDED.sla_hours, base_price = EXCLUDED.base_price`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpsertConsultationType: %v", ErrBuildQuery, err)
	}
	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

func (p *Postgres) ListByConsultant(ctx context.Context, consultantID string) ([]model.Booking, error) {
	return p.listBookings(ctx, sq.Eq{"consultant_id": consultantID})
}

func (p *Postgres) ListAll(ctx context.Context) ([]model.Booking, error) {
	return p.listBookings(ctx, nil)
}

func (p *Postgres) listBookings(ctx context.Context, where sq.Sqlizer) ([]model.Booking, error) {
	qb := psql.Select(bookingColumns...).From("consultation_bookings").OrderBy("created_at ASC")
	if where != nil {
		qb = qb.Where(where)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listBookings: %v", ErrBuildQuery, err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var (
			b      model.Booking
			status string
		)
		if err := rows.Scan(
			&b.ID,
			&b.TicketNumber,
			&b.ClientID,
			&b.ConsultantID,
			&b.ConsultationTypeID,
			&b.Subject,
			&b.Price,
			&b.ScheduledDate,
			&b.ScheduledTime,
			&b.DurationMinutes,
			&b.SLAHours,
			&status,
			&b.PackageName,
			&b.PackagePrice,
			&b.PackageSLAHours,
			&b.Notes,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = model.BookingStatus(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Create inserts the booking and its booking.created outbox event in one
// transaction. The exclusion constraint turns a lost race into ErrSlotTaken.
func (p *Postgres) Create(ctx context.Context, b *model.Booking) (string, error) {
	slotStart, slotEnd, ok := slotBounds(b)
	var startArg, endArg any
	if ok {
		startArg, endArg = slotStart, slotEnd
	}

	query, args, err := psql.Insert("consultation_bookings").
		Columns(
			"ticket_number", "client_id", "consultant_id", "consultation_type_id", "subject", "price",
			"scheduled_date", "scheduled_time", "duration_minutes", "sla_hours", "status",
			"package_name", "package_price", "package_sla_hours", "notes", "slot_start", "slot_end", "created_at",
		).
		Values(
			b.TicketNumber, b.ClientID, b.ConsultantID, b.ConsultationTypeID, b.Subject, b.Price,
			b.ScheduledDate, b.ScheduledTime, b.DurationMinutes, b.SLAHours, string(b.Status),
			b.PackageName, b.PackagePrice, b.PackageSLAHours, b.Notes, startArg, endArg, b.CreatedAt,
		).
		Suffix("RETURNING id::text").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: Create: %v", ErrBuildQuery, err)
	}

	err = p.pool.InTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID); err != nil {
			return err
		}
		evt, err := outbox.NewBookingCreated(outbox.BookingCreated{
			BookingID:       b.ID,
			TicketNumber:    b.TicketNumber,
			ClientID:        b.ClientID,
			ConsultantID:    b.ConsultantID,
			ScheduledDate:   b.ScheduledDate,
			ScheduledTime:   b.ScheduledTime,
			DurationMinutes: b.DurationMinutes,
			SLAHours:        b.SLAHours,
		})
		if err != nil {
			return err
		}
		return p.outbox.Insert(ctx, tx, evt)
	})
	if IsConflict(err) {
		return "", ErrSlotTaken
	}
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

func slotBounds(b *model.Booking) (time.Time, time.Time, bool) {
	day, err := scheduling.ParseDate(b.ScheduledDate)
	if err != nil || b.DurationMinutes <= 0 {
		return time.Time{}, time.Time{}, false
	}
	minutes, ok := scheduling.ValidClock(b.ScheduledTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start := day.Add(time.Duration(minutes) * time.Minute)
	return start, start.Add(time.Duration(b.DurationMinutes) * time.Minute), true
}

func (p *Postgres) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	query, args, err := psql.Select("id::text", "ticket_number", "client_id", "status", "created_at").
		From("consulting_tickets").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTickets: %v", ErrBuildQuery, err)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		var (
			t      model.Ticket
			status string
		)
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.ClientID, &status, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Status = model.TicketStatus(status)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (p *Postgres) ListResponses(ctx context.Context, ticketID string) ([]model.TicketResponse, error) {
	query, args, err := psql.Select("id::text", "ticket_id::text", "author_id", "body", "created_at").
		From("ticket_responses").
		Where(sq.Eq{"ticket_id": ticketID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListResponses: %v", ErrBuildQuery, err)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.TicketResponse
	for rows.Next() {
		var r model.TicketResponse
		if err := rows.Scan(&r.ID, &r.TicketID, &r.AuthorID, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
