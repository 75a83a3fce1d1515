// Package inbox records consumed event ids so redelivered events are
// processed once.
package inbox

import (
	"context"
	"errors"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/consultdesk/libs/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record reports false when eventID was already recorded.
func (r *Repository) Record(ctx context.Context, eventID string, eventType string) (bool, error) {
	query, args, err := psql.Insert("inbox_events").
		Columns("event_id", "event_type").
		Values(eventID, eventType).
		ToSql()
	if err != nil {
		return false, err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	if err == nil {
		return true, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return false, nil
	}
	return false, err
}

func (r *Repository) Seen(ctx context.Context, eventID string) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("inbox_events").
		Where(sq.Eq{"event_id": eventID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, err
	}
	var seen bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&seen); err != nil {
		return false, err
	}
	return seen, nil
}

// Memory is the in-process inbox used without a database.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: map[string]struct{}{}}
}

func (m *Memory) Seen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[eventID]
	return ok, nil
}

func (m *Memory) Record(_ context.Context, eventID string, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return false, nil
	}
	m.seen[eventID] = struct{}{}
	return true, nil
}
