package store

import "sync"

// MemoryKV is an in-memory implementation of the KV interface.
// This is primarily useful for testing and demos that don't need persistence.
type MemoryKV struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryKV creates a new empty in-memory key-value store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{blobs: make(map[string][]byte)}
}

// Read returns the blob stored under key.
func (s *MemoryKV) Read(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

// Write stores the blob under key.
func (s *MemoryKV) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := make([]byte, len(data))
	copy(blob, data)
	s.blobs[key] = blob
	return nil
}

// Delete removes the key.
func (s *MemoryKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)
	return nil
}

// Compile-time interface satisfaction check.
var _ KV = (*MemoryKV)(nil)
