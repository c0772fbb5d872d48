package recovery_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/recoverykey/pkg/keystore"
)

// MockHasher is a mock implementation of hasher.Hasher.
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(plaintext, digest string) bool {
	args := m.Called(plaintext, digest)
	return args.Bool(0)
}

// reversingHasher is a fast, deterministic stand-in for bcrypt.
type reversingHasher struct{}

func (reversingHasher) Hash(plaintext string) (string, error) {
	r := []rune(plaintext)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return "rev$" + string(r), nil
}

func (h reversingHasher) Verify(plaintext, digest string) bool {
	want, _ := h.Hash(plaintext)
	return strings.HasPrefix(digest, "rev$") && want == digest
}

// plainStore hides the Updater implementation of the wrapped store so the
// service falls back to Get/Set.
type plainStore struct {
	inner keystore.Store
}

func (p plainStore) Get(ctx context.Context, name string, def []byte) ([]byte, error) {
	return p.inner.Get(ctx, name, def)
}

func (p plainStore) Set(ctx context.Context, name string, value []byte) error {
	return p.inner.Set(ctx, name, value)
}

// failingStore fails every operation with err.
type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string, []byte) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error           { return f.err }

var errStoreDown = errors.New("store unreachable")

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
