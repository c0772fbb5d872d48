package keystore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store and Updater on Redis string keys.
type RedisStore struct {
	db      redis.UniversalClient
	prefix  string
	retries int
}

type RedisOption func(*RedisStore)

// WithRedisPrefix namespaces every key, e.g. "site:42:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithRedisRetries bounds the optimistic Update retry loop.
func WithRedisRetries(n int) RedisOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.retries = n
		}
	}
}

// NewRedisStore wraps an existing client. The caller owns the client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		db:      client,
		retries: defaultRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Get(ctx context.Context, name string, def []byte) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	val, err := s.db.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores the value without expiration.
func (s *RedisStore) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return ErrEmptyName
	}
	return s.db.Set(ctx, s.key(name), value, 0).Err()
}

// Update watches the key, applies fn and commits in MULTI/EXEC. A concurrent
// write to the key fails the transaction and the loop starts over.
func (s *RedisStore) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if name == "" {
		return ErrEmptyName
	}
	key := s.key(name)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if errors.Is(err, redis.Nil) {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return errors.Join(ErrAborted, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for range s.retries {
		err := s.db.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return ErrConflict
}
