package keystore

import "errors"

var (
	ErrEmptyName = errors.New("keystore: empty name")
	ErrConflict  = errors.New("keystore: concurrent update conflict, retries exhausted")
	ErrAborted   = errors.New("keystore: update aborted")
	ErrClosed    = errors.New("keystore: store is closed")
)
