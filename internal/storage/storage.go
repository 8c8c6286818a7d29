// Package storage persists the bearer token and user profile across
// process restarts behind a narrow key-value contract, so the rest of
// the application is unaware of the persistence medium.
package storage

// Keys used by the session layer. The token and user entries are always
// written and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the credential persistence contract. An absent key is a
// normal, representable state, not a failure: Get reports it through
// the ok return, and Remove of a missing key succeeds.
type Store interface {
	// Get returns the stored value for key. ok is false when the key
	// is absent; err is reserved for medium failures.
	Get(key string) (value string, ok bool, err error)

	// Set writes value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string) error
}
