package mock

import (
	"sync"
)

// TagWrite is one recorded tag-transport write.
type TagWrite struct {
	// FileID is the target tag file.
	FileID uint16

	// Offset is the byte offset of the write.
	Offset int

	// Data is the written bytes.
	Data []byte
}

// TagTransport is a recording mock of the passive-tag collaborator. It
// maintains the resulting file image so tests can assert what a peer
// reading the tag would observe.
type TagTransport struct {
	mu sync.Mutex

	// Writes is the ordered list of recorded writes.
	Writes []TagWrite

	// Err fails every write when non-nil.
	Err error

	// FailAtOffset fails writes targeting this offset when FailOffset is
	// set.
	FailAtOffset int

	// FailOffsetErr is returned for writes at FailAtOffset when non-nil.
	FailOffsetErr error

	image map[uint16][]byte
}

// NewTagTransport creates a mock with an empty file image.
func NewTagTransport() *TagTransport {
	return &TagTransport{image: make(map[uint16][]byte)}
}

// WriteFile records the write and applies it to the file image.
func (t *TagTransport) WriteFile(fileID uint16, offset int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Err != nil {
		return t.Err
	}
	if t.FailOffsetErr != nil && offset == t.FailAtOffset {
		return t.FailOffsetErr
	}

	d := make([]byte, len(data))
	copy(d, data)
	t.Writes = append(t.Writes, TagWrite{FileID: fileID, Offset: offset, Data: d})

	file := t.image[fileID]
	if need := offset + len(data); need > len(file) {
		grown := make([]byte, need)
		copy(grown, file)
		file = grown
	}
	copy(file[offset:], data)
	t.image[fileID] = file
	return nil
}

// Image returns a copy of the current file image, the bytes a peer reading
// the tag would see.
func (t *TagTransport) Image(fileID uint16) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	file := t.image[fileID]
	out := make([]byte, len(file))
	copy(out, file)
	return out
}

// WriteCount returns the number of recorded writes.
func (t *TagTransport) WriteCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Writes)
}
