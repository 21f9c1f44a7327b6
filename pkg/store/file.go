package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileVersion is the current version of the backing file format.
const fileVersion = 1

// fileImage is the on-disk representation of a FileKV.
// []byte values are base64-encoded by encoding/json.
type fileImage struct {
	// Version is the file format version.
	Version int `json:"version"`

	// SavedAt is when the file was last written.
	SavedAt time.Time `json:"saved_at"`

	// Blobs maps keys to their stored values.
	Blobs map[string][]byte `json:"blobs,omitempty"`
}

// FileKV is a KV implementation backed by a single JSON file.
// Every write rewrites the whole file; the stored blobs are small and few
// (bonding record, CCCD, identity keys), so this stays cheap.
type FileKV struct {
	mu    sync.Mutex
	path  string
	blobs map[string][]byte
}

// NewFileKV creates a key-value store backed by the file at path.
// A missing file is treated as an empty store.
func NewFileKV(path string) (*FileKV, error) {
	s := &FileKV{path: path, blobs: make(map[string][]byte)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var image fileImage
	if err := json.Unmarshal(data, &image); err != nil {
		return nil, err
	}
	if image.Blobs != nil {
		s.blobs = image.Blobs
	}
	return s, nil
}

// Read returns the blob stored under key.
func (s *FileKV) Read(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

// Write stores the blob under key and persists the store to disk.
func (s *FileKV) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := make([]byte, len(data))
	copy(blob, data)
	s.blobs[key] = blob
	return s.save()
}

// Delete removes the key and persists the store to disk.
func (s *FileKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return nil
	}
	delete(s.blobs, key)
	return s.save()
}

// save writes the current image to disk. Caller must hold the mutex.
func (s *FileKV) save() error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	image := fileImage{
		Version: fileVersion,
		SavedAt: time.Now(),
		Blobs:   s.blobs,
	}
	data, err := json.MarshalIndent(image, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Compile-time interface satisfaction check.
var _ KV = (*FileKV)(nil)
