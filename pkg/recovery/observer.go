package recovery

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// KeyObserver is notified after a recovery key has been stored. It receives
// the plaintext key and is responsible for delivering it.
type KeyObserver interface {
	KeyGenerated(ctx context.Context, token, key string)
}

// KeyObserverFunc adapts a function to KeyObserver.
type KeyObserverFunc func(ctx context.Context, token, key string)

func (f KeyObserverFunc) KeyGenerated(ctx context.Context, token, key string) {
	f(ctx, token, key)
}

type observerEntry struct {
	id       uuid.UUID
	observer KeyObserver
}

type observers struct {
	mu      sync.RWMutex
	entries []observerEntry
}

func (o *observers) add(obs KeyObserver) uuid.UUID {
	id := uuid.New()

	o.mu.Lock()
	o.entries = append(o.entries, observerEntry{id: id, observer: obs})
	o.mu.Unlock()

	return id
}

func (o *observers) remove(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, e := range o.entries {
		if e.id == id {
			o.entries = append(o.entries[:i:i], o.entries[i+1:]...)
			return
		}
	}
}

// notify calls observers in registration order, outside the lock.
func (o *observers) notify(ctx context.Context, token, key string) {
	o.mu.RLock()
	snapshot := make([]KeyObserver, len(o.entries))
	for i, e := range o.entries {
		snapshot[i] = e.observer
	}
	o.mu.RUnlock()

	for _, obs := range snapshot {
		obs.KeyGenerated(ctx, token, key)
	}
}
