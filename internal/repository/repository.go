// Package repository defines the storage interfaces the orchestration layer
// consumes plus their Postgres implementations. The interfaces are the
// boundary: any backing store can implement them.
package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}
