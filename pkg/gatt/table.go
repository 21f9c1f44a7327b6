package gatt

import (
	"errors"
	"sync"
)

// Attribute servicing errors, surfaced to the stack as the matching ATT
// error responses.
var (
	ErrInvalidHandle          = errors.New("invalid attribute handle")
	ErrInvalidOffset          = errors.New("invalid read offset")
	ErrInvalidAttributeLength = errors.New("invalid attribute length")
)

// Attribute is one entry of the attribute table.
type Attribute struct {
	// Handle is the attribute handle peers address.
	Handle uint16

	// Value is the current value. Its length may grow up to MaxLen.
	Value []byte

	// MaxLen is the declared maximum value length.
	MaxLen int
}

// Table is the in-process attribute table the server serves reads and
// writes from. Safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	attrs []*Attribute
}

// NewTable creates a table over the given attributes.
func NewTable(attrs ...*Attribute) *Table {
	return &Table{attrs: attrs}
}

// lookup returns the attribute for handle, or nil if not present.
func (t *Table) lookup(handle uint16) *Attribute {
	for _, a := range t.attrs {
		if a.Handle == handle {
			return a
		}
	}
	return nil
}

// Read returns up to maxLen bytes of the attribute value starting at offset.
func (t *Table) Read(handle uint16, offset, maxLen int) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attr := t.lookup(handle)
	if attr == nil {
		return nil, ErrInvalidHandle
	}
	if offset >= len(attr.Value) {
		return nil, ErrInvalidOffset
	}
	n := len(attr.Value) - offset
	if maxLen < n {
		n = maxLen
	}
	out := make([]byte, n)
	copy(out, attr.Value[offset:offset+n])
	return out, nil
}

// Write replaces the attribute value. The value length is validated against
// the attribute's declared maximum.
func (t *Table) Write(handle uint16, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	attr := t.lookup(handle)
	if attr == nil {
		return ErrInvalidHandle
	}
	if len(value) > attr.MaxLen {
		return ErrInvalidAttributeLength
	}
	attr.Value = make([]byte, len(value))
	copy(attr.Value, value)
	return nil
}

// Value returns a copy of the attribute's current value.
func (t *Table) Value(handle uint16) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	attr := t.lookup(handle)
	if attr == nil {
		return nil, ErrInvalidHandle
	}
	out := make([]byte, len(attr.Value))
	copy(out, attr.Value)
	return out, nil
}
