package keystore

import "context"

// Store persists one opaque value per name.
type Store interface {
	// Get returns the stored value for name, or def if nothing is stored.
	Get(ctx context.Context, name string, def []byte) ([]byte, error)
	// Set replaces the value stored under name.
	Set(ctx context.Context, name string, value []byte) error
}

// UpdateFunc receives the current value (nil when missing) and returns the
// value to store. Returning an error aborts the update.
type UpdateFunc func(current []byte) ([]byte, error)

// Updater is implemented by stores that can apply a read-modify-write as one
// atomic step.
type Updater interface {
	Update(ctx context.Context, name string, fn UpdateFunc) error
}

// defaultRetries bounds optimistic update loops.
const defaultRetries = 10

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
