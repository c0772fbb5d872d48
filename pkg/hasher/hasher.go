package hasher

// Hasher hashes and verifies short secrets. Implementations must be one-way
// and safe for concurrent use.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
