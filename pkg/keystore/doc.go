// Package keystore provides named-value stores used to persist recovery key
// records.
//
// A Store holds one opaque byte value per name. Get returns a caller-supplied
// default when the name is missing and Set replaces the whole value; merging
// is the caller's job. Stores that can apply a read-modify-write atomically
// also implement Updater, which lets callers avoid lost updates when several
// processes share the same backend.
//
// # Implementations
//
//   - MemoryStore keeps values in process memory. Useful for tests and
//     single-process deployments.
//   - BoltStore persists values in a bbolt file. Update runs inside a bolt
//     write transaction.
//   - RedisStore keeps values under prefixed Redis keys. Update uses
//     WATCH/MULTI and retries on conflict.
//   - PostgresStore keeps values in the recovery_options table. Update locks
//     the row with SELECT ... FOR UPDATE.
//   - MongoStore keeps one document per name and guards Update with a
//     version field compare-and-swap.
//
// # Usage
//
//	store := keystore.NewMemoryStore()
//
//	err := store.Update(ctx, "recovery_keys", func(current []byte) ([]byte, error) {
//	    // decode current, mutate, encode
//	    return next, nil
//	})
//
// # Error Handling
//
// ErrEmptyName is returned for empty names. ErrConflict is returned when an
// optimistic Update could not commit within its retry budget. Errors returned
// by the Update callback are joined with ErrAborted and the stored value is
// left untouched.
package keystore
