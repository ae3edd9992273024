// Package storage holds what the postgres stores share: the query interface
// satisfied by both *sql.DB and *sql.Tx, transaction plumbing, driver error
// translation, and the write acknowledgements returned to clients.
package storage

import (
	"context"
	"database/sql"

	"bistro/pkg/platform/tx"
)

// DBTX is the subset of database/sql used by our stores.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor returns the transaction carried by ctx, or db when there is none,
// so a store joins a surrounding WithTx without changing its signature.
func Executor(ctx context.Context, db DBTX) DBTX {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return db
}

// WithTx begins a transaction, runs fn with the transaction stored in ctx, and
// commits on success or rolls back on error/panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) (err error) {
	t, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = t.Rollback()
			panic(p)
		}
		if err != nil {
			_ = t.Rollback()
			return
		}
		err = t.Commit()
	}()

	err = fn(tx.WithTx(ctx, t))
	return err
}

// RowsAffected reads the affected row count, treating driver errors as zero.
func RowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
