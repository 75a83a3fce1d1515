package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/md-rashed-zaman/consultdesk/libs/db"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the idempotent DDL for the consulting service tables.
func Schema() string {
	return schemaSQL
}

func Migrate(ctx context.Context, pool *db.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
