package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/recoverykey/pkg/hasher"
	"github.com/dmitrymomot/recoverykey/pkg/keystore"
)

// Service generates and validates recovery mode keys.
type Service struct {
	store  keystore.Store
	hasher hasher.Hasher

	optionName  string
	tokenLength int
	keyLength   int
	charset     []byte
	now         func() time.Time

	mu        sync.Mutex // guards record set read-modify-write
	observers *observers
}

// NewService creates a Service backed by store and h.
func NewService(store keystore.Store, h hasher.Hasher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if h == nil {
		return nil, ErrNilHasher
	}

	s := &Service{
		store:       store,
		hasher:      h,
		optionName:  DefaultOptionName,
		tokenLength: DefaultLength,
		keyLength:   DefaultLength,
		charset:     DefaultCharset,
		now:         time.Now,
		observers:   &observers{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Observe registers obs and returns a function that unregisters it.
func (s *Service) Observe(obs KeyObserver) (cancel func()) {
	if obs == nil {
		return func() {}
	}
	id := s.observers.add(obs)

	var once sync.Once
	return func() {
		once.Do(func() { s.observers.remove(id) })
	}
}

// GenerateRecoveryModeToken returns a random token identifying a key in
// storage. It has no side effects.
func (s *Service) GenerateRecoveryModeToken() string {
	return randomString(s.tokenLength, s.charset)
}

// GenerateAndStoreRecoveryModeKey creates a key for token, stores its hash and
// returns the plaintext key. An existing record for token is replaced.
func (s *Service) GenerateAndStoreRecoveryModeKey(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}

	key := randomString(s.keyLength, s.charset)

	hashed, err := s.hasher.Hash(key)
	if err != nil {
		return "", fmt.Errorf("failed to hash recovery key: %w", err)
	}

	createdAt := s.now().Unix()
	if err := s.mutate(ctx, func(rs recordSet) error {
		return rs.put(token, hashed, createdAt)
	}); err != nil {
		return "", fmt.Errorf("failed to store recovery key: %w", err)
	}

	s.observers.notify(ctx, token, key)

	return key, nil
}

// ValidateRecoveryModeKey checks key against the record stored for token.
//
// The record is removed before any check runs, so every call consumes the
// token regardless of the result. ttl is how long a key stays valid after it
// was generated.
func (s *Service) ValidateRecoveryModeKey(ctx context.Context, token, key string, ttl time.Duration) error {
	var (
		raw   json.RawMessage
		found bool
	)
	if err := s.mutate(ctx, func(rs recordSet) error {
		raw, found = rs[token]
		if !found {
			return errUnchanged
		}
		delete(rs, token)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to consume recovery key: %w", err)
	}

	if !found {
		return ErrTokenNotFound
	}

	rec, ok := parseRecord(raw)
	if !ok {
		return ErrInvalidRecordFormat
	}

	if !s.hasher.Verify(key, rec.HashedKey) {
		return ErrHashMismatch
	}

	if expired(rec.CreatedAt.Unix(), ttl, s.now()) {
		return ErrKeyExpired
	}

	return nil
}

// CleanExpiredKeys removes every record older than ttl, and records with no
// creation time.
func (s *Service) CleanExpiredKeys(ctx context.Context, ttl time.Duration) error {
	_, err := s.cleanExpired(ctx, ttl)
	return err
}

func (s *Service) cleanExpired(ctx context.Context, ttl time.Duration) (int, error) {
	var removed int
	err := s.mutate(ctx, func(rs recordSet) error {
		removed = 0
		now := s.now()
		for token, raw := range rs {
			ts, ok := createdAt(raw)
			if !ok || expired(ts, ttl, now) {
				delete(rs, token)
				removed++
			}
		}
		if removed == 0 {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired recovery keys: %w", err)
	}
	return removed, nil
}

// Records returns a snapshot of the pending records keyed by token. Entries
// that cannot be parsed are left out.
func (s *Service) Records(ctx context.Context) (map[string]Record, error) {
	b, err := s.store.Get(ctx, s.optionName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load recovery keys: %w", err)
	}
	rs, err := decodeRecordSet(b)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Record, len(rs))
	for token, raw := range rs {
		if rec, ok := parseRecord(raw); ok {
			out[token] = rec
		}
	}
	return out, nil
}

// mutate applies fn to the stored record set and writes the result back. fn
// may return errUnchanged to skip the write.
func (s *Service) mutate(ctx context.Context, fn func(recordSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply := func(current []byte) ([]byte, error) {
		rs, err := decodeRecordSet(current)
		if err != nil {
			return nil, err
		}
		if err := fn(rs); err != nil {
			return nil, err
		}
		return rs.encode()
	}

	var err error
	if u, ok := s.store.(keystore.Updater); ok {
		err = u.Update(ctx, s.optionName, apply)
	} else {
		err = s.getAndSet(ctx, apply)
	}

	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

func (s *Service) getAndSet(ctx context.Context, apply keystore.UpdateFunc) error {
	current, err := s.store.Get(ctx, s.optionName, nil)
	if err != nil {
		return err
	}
	next, err := apply(current)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.optionName, next)
}
