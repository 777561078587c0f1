package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-catalog/internal/database"
)

var ErrNotFound = errors.New("not found")

// Store groups the repositories that make up one unit of work. Repositories
// obtained from a Store returned by InTx share its transaction.
type Store interface {
	Catalog() CatalogRepository
	Links() LinkRepository
	Skills() SkillRepository
	Jobs() FinalizationJobRepository

	InTx(ctx context.Context, fn func(s Store) error) error
	// Snapshot runs fn against one consistent read-only view.
	Snapshot(ctx context.Context, fn func(s Store) error) error
}

type SQLStore struct {
	db   database.DB
	q    database.Querier
	inTx bool
}

func NewSQLStore(db database.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) Catalog() CatalogRepository { return NewSQLCatalogRepository(s.q) }
func (s *SQLStore) Links() LinkRepository { return NewSQLLinkRepository(s.q) }
func (s *SQLStore) Skills() SkillRepository { return NewSQLSkillRepository(s.q) }
func (s *SQLStore) Jobs() FinalizationJobRepository { return NewSQLFinalizationJobRepository(s.q) }
func (s *SQLStore) DB() database.DB { return s.db }

// Snapshot runs fn in a read-only snapshot transaction. Inside InTx it reuses
// the outer transaction.
func (s *SQLStore) Snapshot(ctx context.Context, fn func(s Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return database.WithSnapshot(ctx, s.db, func(tx database.Tx) error {
		return fn(&SQLStore{db: s.db, q: tx, inTx: true})
	})
}

// InTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(s Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return database.WithTx(ctx, s.db, func(tx database.Tx) error {
		return fn(&SQLStore{db: s.db, q: tx, inTx: true})
	})
}

// dbTime normalizes timestamps before they are written so both drivers store
// and compare the same value.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// likePattern builds a case-insensitive substring pattern for use with
// LOWER(col) LIKE $n ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func notFound(err error) error {
	if errors.Is(err, database.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
