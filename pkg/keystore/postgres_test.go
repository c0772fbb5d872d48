package keystore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/recoverykey/pkg/keystore"
)

// rollbackDB fails every transaction start with the given SQLSTATE.
type rollbackDB struct {
	keystore.PostgresDB
	code   string
	begins int
}

func (db *rollbackDB) Begin(context.Context) (pgx.Tx, error) {
	db.begins++
	return nil, fmt.Errorf("begin: %w", &pgconn.PgError{Code: db.code})
}

func TestPostgresStore_UpdateRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		code       string
		wantBegins int
		wantErr    error
	}{
		{"serialization failure is retried", "40001", 3, keystore.ErrConflict},
		{"deadlock is retried", "40P01", 3, keystore.ErrConflict},
		{"other errors are returned at once", "23505", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := &rollbackDB{code: tt.code}
			store := keystore.NewPostgresStore(db, keystore.WithPostgresRetries(3))

			err := store.Update(context.Background(), "recovery_keys", func(b []byte) ([]byte, error) {
				t.Fatal("update function must not run without a transaction")
				return b, nil
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantBegins, db.begins)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			var pgErr *pgconn.PgError
			require.True(t, errors.As(err, &pgErr))
			assert.Equal(t, tt.code, pgErr.Code)
		})
	}
}

func TestPostgresStore_UpdateEmptyName(t *testing.T) {
	t.Parallel()

	db := &rollbackDB{code: "40001"}
	err := keystore.NewPostgresStore(db).Update(context.Background(), "", nil)
	require.ErrorIs(t, err, keystore.ErrEmptyName)
	assert.Zero(t, db.begins)
}
