// Package recovery issues and validates single-use recovery mode keys.
//
// A recovery attempt is identified by a token, which is not secret and can be
// placed in a URL, and proven by a key, which is secret and returned to the
// caller exactly once. Only a one-way hash of the key is persisted, together
// with the time it was created. All pending records live in a single named
// value of a keystore.Store.
//
// # Lifecycle
//
//	token := svc.GenerateRecoveryModeToken()
//	key, err := svc.GenerateAndStoreRecoveryModeKey(ctx, token)
//	// deliver token and key to the administrator out of band
//
//	err = svc.ValidateRecoveryModeKey(ctx, token, key, time.Hour)
//
// The first validation attempt for a token consumes its record, whatever the
// outcome. A mistyped key therefore burns the token and a new one has to be
// issued. Records that are never validated are dropped by CleanExpiredKeys,
// usually from a Sweeper running in the background.
//
// # Observers
//
// Observers registered with Observe or WithObserver are called with the token
// and plaintext key after a key is stored. This is the only place the key
// leaves the service other than the return value, so register only the
// component responsible for delivering it.
//
// # Concurrency
//
// Every read-modify-write of the record set is serialized by a mutex held by
// the Service. If the store implements keystore.Updater the mutation also
// goes through its atomic Update, which protects against other processes
// sharing the same backend.
//
// # Error Handling
//
// ValidateRecoveryModeKey returns nil on success or one of ErrTokenNotFound,
// ErrInvalidRecordFormat, ErrHashMismatch and ErrKeyExpired. These are
// ordinary outcomes to branch on with errors.Is. Store and hasher failures are
// wrapped and returned as they are.
package recovery
