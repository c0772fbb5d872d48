package keystore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBoltBucket = "options"

// BoltStore implements Store and Updater on top of a bbolt file.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	closed atomic.Bool
}

// BoltOptions configures OpenBolt.
type BoltOptions struct {
	// Bucket is the bbolt bucket holding the values. Defaults to "options".
	Bucket string
	// Timeout is how long to wait for the file lock. Defaults to 1s.
	Timeout time.Duration
}

// OpenBolt opens or creates the bbolt database at path.
func OpenBolt(path string, opts BoltOptions) (*BoltStore, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second
	}
	bucket := []byte(defaultBoltBucket)
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

// Close closes the underlying database file. Later calls on the store return
// ErrClosed.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) Get(ctx context.Context, name string, def []byte) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(name)); v != nil {
			// bbolt values are only valid for the life of the transaction
			out = cloneBytes(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return def, nil
	}
	return out, nil
}

func (s *BoltStore) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return ErrEmptyName
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(name), nonNil(value))
	})
}

// Update runs fn inside a single bolt write transaction. bbolt allows one
// writer at a time, so the read-modify-write cannot interleave.
func (s *BoltStore) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if name == "" {
		return ErrEmptyName
	}
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		next, err := fn(cloneBytes(b.Get([]byte(name))))
		if err != nil {
			return errors.Join(ErrAborted, err)
		}
		return b.Put([]byte(name), nonNil(next))
	})
}

// nonNil keeps an explicitly empty value distinguishable from a missing key.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
