package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSlotTaken is returned by Create when the row would overlap an active
	// booking of the same consultant.
	ErrSlotTaken = errors.New("storage: slot already taken")

	ErrBuildQuery = errors.New("storage: build query")
)

// IsConflict matches exclusion constraint violations.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
