package hasher

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// maxSecretLen is the bcrypt input limit; longer inputs are truncated by
// some implementations and rejected by x/crypto.
const maxSecretLen = 72

// Bcrypt hashes secrets with bcrypt.
type Bcrypt struct {
	cost int
}

type BcryptOption func(*Bcrypt)

// WithCost sets the bcrypt cost. Values outside the valid bcrypt range are
// ignored.
func WithCost(cost int) BcryptOption {
	return func(b *Bcrypt) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			b.cost = cost
		}
	}
}

// NewBcrypt creates a bcrypt hasher with bcrypt.DefaultCost unless overridden.
func NewBcrypt(opts ...BcryptOption) *Bcrypt {
	b := &Bcrypt{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cost returns the configured bcrypt cost.
func (b *Bcrypt) Cost() int {
	return b.cost
}

// Hash returns the bcrypt digest of plaintext.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxSecretLen {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", errors.Join(ErrHashFailed, err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests and
// over-long inputs never match.
func (b *Bcrypt) Verify(plaintext, digest string) bool {
	if len(plaintext) > maxSecretLen || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
