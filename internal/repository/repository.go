package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moovies/moovies-api/internal/domain"
	"github.com/moovies/moovies-api/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate indicates an insert lost to an existing row under a unique
// constraint. Callers racing on first-insert re-read instead of failing.
var ErrDuplicate = errors.New("repository: duplicate")

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same repository code runs inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	pool        *pgxpool.Pool
	Movies      *MoviesRepository
	Ratings     *RatingsRepository
	WatchList   *ListRepository
	WatchedList *ListRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	r := newRepository(pool)
	r.pool = pool
	return r
}

func newRepository(db Querier) *Repository {
	return &Repository{
		Movies:      &MoviesRepository{db: db},
		Ratings:     &RatingsRepository{db: db},
		WatchList:   &ListRepository{db: db, kind: domain.WatchList},
		WatchedList: &ListRepository{db: db, kind: domain.WatchedList},
	}
}

// WithTx returns a repository set bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return newRepository(tx)
}

// InTx runs fn against a transaction-bound repository, committing on nil and
// rolling back otherwise.
func (r *Repository) InTx(ctx context.Context, fn func(*Repository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(r.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
