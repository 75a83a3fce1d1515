// Package cache keeps computed executive snapshots in Redis for a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/analytics"
)

const DefaultSnapshotKey = "consulting:executive_snapshot"

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type SnapshotCache struct {
	client kv
	key    string
	ttl    time.Duration
}

// NewSnapshotCache returns nil when caching is disabled (no client or a
// non-positive ttl).
func NewSnapshotCache(client kv, key string, ttl time.Duration) *SnapshotCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotCache{client: client, key: key, ttl: ttl}
}

func (c *SnapshotCache) Load(ctx context.Context) (analytics.Snapshot, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return analytics.Snapshot{}, false, nil
	}
	if err != nil {
		return analytics.Snapshot{}, false, err
	}
	var s analytics.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return analytics.Snapshot{}, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return s, true, nil
}

// Store skips degraded snapshots so an outage is not served after recovery.
func (c *SnapshotCache) Store(ctx context.Context, s analytics.Snapshot) error {
	if s.Degraded {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}
