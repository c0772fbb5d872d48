package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	info  []string
	error []string
}

func (l *recordingLogger) InfoContext(_ context.Context, msg string, _ ...any) {
	l.info = append(l.info, msg)
}

func (l *recordingLogger) ErrorContext(_ context.Context, msg string, _ ...any) {
	l.error = append(l.error, msg)
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS recovery_options")
}

func TestGooseLogger(t *testing.T) {
	t.Parallel()

	rec := &recordingLogger{}
	l := &gooseLogger{log: rec}

	l.Printf("applied %d migrations", 1)
	l.Fatalf("failed: %s", "boom")

	assert.Equal(t, []string{"applied 1 migrations"}, rec.info)
	assert.Equal(t, []string{"failed: boom"}, rec.error)
}

func TestConnect_InvalidConnectionString(t *testing.T) {
	t.Parallel()

	_, err := Connect(context.Background(), Config{ConnectionString: "postgres://%zz", RetryAttempts: 1})
	require.ErrorIs(t, err, ErrFailedToParseDBConfig)
}

func TestIsSerializationFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("40001"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSerializationFailure(tt.err))
		})
	}
}
