package recovery_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/recoverykey/pkg/keystore"
	"github.com/dmitrymomot/recoverykey/pkg/recovery"
)

func TestSweeper_Sweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := newFakeClock()
	svc, err := recovery.NewService(keystore.NewMemoryStore(), reversingHasher{}, recovery.WithClock(clock.Now))
	require.NoError(t, err)

	for _, token := range []string{"a", "b"} {
		_, err := svc.GenerateAndStoreRecoveryModeKey(ctx, token)
		require.NoError(t, err)
	}
	clock.Advance(2 * time.Hour)
	_, err = svc.GenerateAndStoreRecoveryModeKey(ctx, "c")
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sweeper := recovery.NewSweeper(svc, time.Hour, recovery.WithSweeperLogger(log))
	assert.Equal(t, 2, sweeper.Sweep(ctx))
	assert.Contains(t, buf.String(), "count=2")
	assert.Contains(t, buf.String(), "component=sweeper")

	assert.Equal(t, 0, sweeper.Sweep(ctx))

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Contains(t, records, "c")
}

func TestSweeper_LogsFailures(t *testing.T) {
	t.Parallel()

	svc, err := recovery.NewService(failingStore{err: errStoreDown}, reversingHasher{})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	sweeper := recovery.NewSweeper(svc, time.Hour, recovery.WithSweeperLogger(log))
	assert.Equal(t, 0, sweeper.Sweep(context.Background()))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), errStoreDown.Error())
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc, err := recovery.NewService(keystore.NewMemoryStore(), reversingHasher{}, recovery.WithClock(clock.Now))
	require.NoError(t, err)

	_, err = svc.GenerateAndStoreRecoveryModeKey(context.Background(), "stale")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper := recovery.NewSweeper(svc, time.Hour, recovery.WithSweepInterval(10*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	require.Eventually(t, func() bool {
		records, err := svc.Records(context.Background())
		return err == nil && len(records) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
