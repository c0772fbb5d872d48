package keystore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/recoverykey/pkg/pg"
)

// PostgresDB is the subset of *pgxpool.Pool the store needs.
type PostgresDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store and Updater on the recovery_options table
// created by the pg package migrations.
type PostgresStore struct {
	pool    PostgresDB
	retries int
}

type PostgresOption func(*PostgresStore)

// WithPostgresRetries bounds how often Update restarts after a serialization
// failure or deadlock.
func WithPostgresRetries(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.retries = n
		}
	}
}

// NewPostgresStore wraps an existing pool. The caller owns the pool.
func NewPostgresStore(pool PostgresDB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{pool: pool, retries: defaultRetries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	pgSelectValue = `SELECT value FROM recovery_options WHERE name = $1`
	pgLockValue   = `SELECT value FROM recovery_options WHERE name = $1 FOR UPDATE`
	pgUpsertValue = `INSERT INTO recovery_options (name, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	pgEnsureRow = `INSERT INTO recovery_options (name, value, updated_at)
VALUES ($1, NULL, now())
ON CONFLICT (name) DO NOTHING`
)

func (s *PostgresStore) Get(ctx context.Context, name string, def []byte) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var value []byte
	err := s.pool.QueryRow(ctx, pgSelectValue, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		// placeholder row left by Update
		return def, nil
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return ErrEmptyName
	}
	_, err := s.pool.Exec(ctx, pgUpsertValue, name, nonNil(value))
	return err
}

// Update locks the row for the duration of a transaction. A placeholder row is
// inserted first so there is always something to lock. Transactions rolled
// back by the server as serialization failures are retried.
func (s *PostgresStore) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if name == "" {
		return ErrEmptyName
	}

	for range s.retries {
		err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			return s.update(ctx, tx, name, fn)
		})
		if pg.IsSerializationFailure(err) {
			continue
		}
		return err
	}

	return ErrConflict
}

func (s *PostgresStore) update(ctx context.Context, tx pgx.Tx, name string, fn UpdateFunc) error {
	if _, err := tx.Exec(ctx, pgEnsureRow, name); err != nil {
		return err
	}

	var current []byte
	if err := tx.QueryRow(ctx, pgLockValue, name).Scan(&current); err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return errors.Join(ErrAborted, err)
	}

	_, err = tx.Exec(ctx, pgUpsertValue, name, nonNil(next))
	return err
}
