package base

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is implemented by both *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type txKey struct{}

// WithTx returns a context carrying tx; repositories pick it up automatically
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction bound to ctx, if any
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// Repository is the shared base of all repositories
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a base repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool returns the connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// Conn returns the transaction from ctx or the pool
func (r *Repository) Conn(ctx context.Context) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

// QueryRow runs a query returning a single row
func (r *Repository) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return r.Conn(ctx).QueryRow(ctx, query, args...)
}

// Query runs a query returning many rows
func (r *Repository) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return r.Conn(ctx).Query(ctx, query, args...)
}

// ExecAffected runs a command and returns the number of affected rows
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := r.Conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// lockKeyBits is the width of the id part of an advisory lock key
const lockKeyBits = 56

// LockKey folds a namespace into the top byte of a single bigint lock key
func LockKey(namespace, key int64) int64 {
	return namespace<<lockKeyBits | key&(1<<lockKeyBits-1)
}

// AdvisoryLock takes a transaction-scoped advisory lock; it is a no-op outside a transaction.
func (r *Repository) AdvisoryLock(ctx context.Context, namespace, key int64) error {
	tx, ok := TxFromContext(ctx)
	if !ok {
		return nil
	}
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1::bigint)`, LockKey(namespace, key))
	return err
}

// IsNotFound checks for "no rows"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation checks for PostgreSQL unique_violation (23505)
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
