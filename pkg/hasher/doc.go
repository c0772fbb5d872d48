// Package hasher provides one-way hashing of short secrets such as recovery
// keys.
//
// The Hasher interface is the capability consumers depend on. Bcrypt is the
// default implementation and wraps golang.org/x/crypto/bcrypt.
//
// # Usage
//
//	import "github.com/dmitrymomot/recoverykey/pkg/hasher"
//
//	h := hasher.NewBcrypt(hasher.WithCost(12))
//
//	digest, err := h.Hash("s3cr3t")
//	if err != nil {
//	    // handle error
//	}
//
//	if !h.Verify("s3cr3t", digest) {
//	    // wrong secret
//	}
//
// # Error Handling
//
// Hash returns ErrPasswordTooLong for inputs bcrypt cannot represent and wraps
// any other failure with ErrHashFailed. Verify never returns an error: a
// malformed digest simply does not verify.
package hasher
