package keystore_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/recoverykey/pkg/keystore"
)

type updatingStore interface {
	keystore.Store
	keystore.Updater
}

// runStoreSuite checks the behavior every backend must share. name scopes the
// keys so suites can run against a shared server.
func runStoreSuite(t *testing.T, store updatingStore, prefix string) {
	t.Helper()
	ctx := context.Background()

	t.Run("get returns default when missing", func(t *testing.T) {
		got, err := store.Get(ctx, prefix+"missing", []byte("{}"))
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), got)

		got, err = store.Get(ctx, prefix+"missing", nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set replaces whole value", func(t *testing.T) {
		name := prefix + "replace"
		require.NoError(t, store.Set(ctx, name, []byte(`{"a":1,"b":2}`)))
		require.NoError(t, store.Set(ctx, name, []byte(`{"c":3}`)))

		got, err := store.Get(ctx, name, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"c":3}`), got)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := store.Get(ctx, "", nil)
		require.ErrorIs(t, err, keystore.ErrEmptyName)
		require.ErrorIs(t, store.Set(ctx, "", []byte("x")), keystore.ErrEmptyName)
		require.ErrorIs(t, store.Update(ctx, "", func(b []byte) ([]byte, error) { return b, nil }), keystore.ErrEmptyName)
	})

	t.Run("update sees current value", func(t *testing.T) {
		name := prefix + "update"
		require.NoError(t, store.Set(ctx, name, []byte("1")))

		err := store.Update(ctx, name, func(current []byte) ([]byte, error) {
			assert.Equal(t, []byte("1"), current)
			return []byte("2"), nil
		})
		require.NoError(t, err)

		got, err := store.Get(ctx, name, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), got)
	})

	t.Run("update of missing name receives nil", func(t *testing.T) {
		name := prefix + "update-missing"
		err := store.Update(ctx, name, func(current []byte) ([]byte, error) {
			assert.Empty(t, current)
			return []byte("created"), nil
		})
		require.NoError(t, err)

		got, err := store.Get(ctx, name, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("created"), got)
	})

	t.Run("aborted update leaves value untouched", func(t *testing.T) {
		name := prefix + "abort"
		require.NoError(t, store.Set(ctx, name, []byte("keep")))

		boom := errors.New("boom")
		err := store.Update(ctx, name, func([]byte) ([]byte, error) {
			return nil, boom
		})
		require.ErrorIs(t, err, keystore.ErrAborted)
		require.ErrorIs(t, err, boom)

		got, err := store.Get(ctx, name, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("keep"), got)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		name := prefix + "counter"
		require.NoError(t, store.Set(ctx, name, []byte("0")))

		const workers = 8
		const perWorker = 5

		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWorker {
					errs <- store.Update(ctx, name, func(current []byte) ([]byte, error) {
						n, err := strconv.Atoi(string(current))
						if err != nil {
							return nil, err
						}
						return []byte(strconv.Itoa(n + 1)), nil
					})
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			// optimistic stores may give up under heavy contention
			if errors.Is(err, keystore.ErrConflict) {
				t.Skip("backend exhausted retries under contention")
			}
			require.NoError(t, err)
		}

		got, err := store.Get(ctx, name, nil)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(workers*perWorker), string(got))
	})
}
