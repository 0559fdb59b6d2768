package db

import (
	"context"
	"database/sql"
)

// DBTX is what the card, note, deck and review log stores query through.
// Holding a *sql.DB they run each statement on its own; holding the *sql.Tx
// handed out by WithinTx they join an answer or a batch edit.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
