package alerts

import (
	"context"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/md-rashed-zaman/consultdesk/libs/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, a Alert) (bool, error) {
	query, args, err := psql.Insert("operator_alerts").
		Columns("event_id", "signature", "title", "body", "severity", "source", "received_at").
		Values(a.EventID, a.Signature, a.Title, a.Body, a.Severity, a.Source, a.ReceivedAt).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Memory keeps alerts in process.
type Memory struct {
	mu     sync.Mutex
	alerts []Alert
	ids    map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{ids: map[string]struct{}{}}
}

func (m *Memory) Insert(_ context.Context, a Alert) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[a.EventID]; ok {
		return false, nil
	}
	m.ids[a.EventID] = struct{}{}
	m.alerts = append(m.alerts, a)
	return true, nil
}

func (m *Memory) List() []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Alert(nil), m.alerts...)
}
