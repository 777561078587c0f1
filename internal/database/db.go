package database

import (
	"context"
	"database/sql"
	"errors"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

var (
	ErrNoRows          = errors.New("no rows in result set")
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// Querier is the statement surface shared by DB and Tx. Repositories are
// written against it so the same code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

type DB interface {
	Querier

	Ping(ctx context.Context) error
	Close() error

	Begin(ctx context.Context) (Tx, error)
	// BeginSnapshot opens a read-only transaction whose statements all see
	// the same committed state.
	BeginSnapshot(ctx context.Context) (Tx, error)

	SQLDB() *sql.DB
	Dialect() Dialect
}

type Tx interface {
	Querier

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including on panic.
func WithTx(ctx context.Context, db DB, fn func(tx Tx) error) error {
	return run(ctx, db.Begin, fn)
}

// WithSnapshot runs fn inside a read-only snapshot transaction.
func WithSnapshot(ctx context.Context, db DB, fn func(tx Tx) error) error {
	return run(ctx, db.BeginSnapshot, fn)
}

func run(ctx context.Context, begin func(context.Context) (Tx, error), fn func(tx Tx) error) (err error) {
	tx, err := begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.Background())
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
