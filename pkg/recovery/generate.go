package recovery

import "github.com/dchest/uniuri"

const (
	// DefaultLength is the length of generated tokens and keys.
	DefaultLength = 22
	// DefaultOptionName is the store name holding the record set.
	DefaultOptionName = "recovery_keys"
	// MaxKeyLength is the longest key bcrypt can verify in full.
	MaxKeyLength = 72
)

// DefaultCharset holds letters and digits only, so values are URL safe.
var DefaultCharset = uniuri.StdChars

// randomString draws length characters from charset using crypto/rand.
// uniuri panics if the system randomness source fails.
func randomString(length int, charset []byte) string {
	return uniuri.NewLenChars(length, charset)
}
