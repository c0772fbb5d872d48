package recovery

import "errors"

// Validation outcomes.
var (
	ErrTokenNotFound       = errors.New("recovery mode not initialized")
	ErrInvalidRecordFormat = errors.New("invalid recovery key format")
	ErrHashMismatch        = errors.New("invalid recovery key")
	ErrKeyExpired          = errors.New("recovery key expired")
)

var (
	ErrEmptyToken         = errors.New("recovery token is empty")
	ErrMalformedRecordSet = errors.New("stored recovery keys are not a JSON object")
	ErrNilStore           = errors.New("recovery: store is nil")
	ErrNilHasher          = errors.New("recovery: hasher is nil")
)

// errUnchanged short-circuits a mutation that has nothing to write.
var errUnchanged = errors.New("record set unchanged")
