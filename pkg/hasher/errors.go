package hasher

import "errors"

var (
	ErrPasswordTooLong = errors.New("secret exceeds 72 bytes")
	ErrHashFailed      = errors.New("failed to hash secret")
)
