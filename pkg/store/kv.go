package store

// KV defines the key-value persistence collaborator the store is built on:
// a flat key to small-blob cache with no transactions or versioning.
// Implementations must be safe for concurrent access.
type KV interface {
	// Read returns the blob stored under key. The second return value is
	// false if the key has never been written; that is a normal outcome,
	// not an error.
	Read(key string) ([]byte, bool, error)

	// Write stores the blob under key, replacing any previous value.
	Write(key string, data []byte) error

	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(key string) error
}
