package store

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Store keys. These match the device firmware's credential cache, so a
// store migrated from an earlier firmware build keeps its bonds.
const (
	// KeyBonding holds the CBOR-encoded BondingRecord.
	KeyBonding = "bonding"

	// KeyCCCD holds the 2-byte notification-subscription bitmask.
	KeyCCCD = "cccd"

	// KeyIdentityKeys holds the opaque local identity key blob.
	KeyIdentityKeys = "identity_keys"
)

// Blob sizes.
const (
	// PeerAddressSize is the size of a device address.
	PeerAddressSize = 6

	// LinkKeysSize is the size of the peer link-key blob the stack reports.
	LinkKeysSize = 80

	// CCCDSize is the size of the stored subscription flag.
	CCCDSize = 2
)

// BondingRecord is the persisted trust relationship with the bonded peer.
// LinkKeys and PeerAddress are owned by the wireless stack; the store only
// relays them.
type BondingRecord struct {
	// PeerAddress is the bonded peer's device address (stack byte order).
	PeerAddress [PeerAddressSize]byte `cbor:"1,keyasint"`

	// LinkKeys is the peer's opaque link-key blob.
	LinkKeys [LinkKeysSize]byte `cbor:"2,keyasint"`

	// Bonded reports whether pairing completed with this peer.
	Bonded bool `cbor:"3,keyasint"`
}

// encMode is the CBOR encoder mode for store records.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for store records.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Store provides typed load/save wrappers over a KV collaborator for the
// coordinator's persistent state.
type Store struct {
	kv KV
}

// New creates a Store over the given key-value collaborator.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadBonding returns the persisted bonding record, or nil if none has been
// saved yet. A missing record is a normal outcome, not an error.
func (s *Store) LoadBonding() (*BondingRecord, error) {
	blob, ok, err := s.kv.Read(KeyBonding)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", KeyBonding, err)
	}
	if !ok {
		return nil, nil
	}

	record := &BondingRecord{}
	if err := decMode.Unmarshal(blob, record); err != nil {
		return nil, fmt.Errorf("decode %q: %w", KeyBonding, err)
	}
	return record, nil
}

// SaveBonding persists the bonding record.
func (s *Store) SaveBonding(record *BondingRecord) error {
	blob, err := encMode.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %q: %w", KeyBonding, err)
	}
	if err := s.kv.Write(KeyBonding, blob); err != nil {
		return fmt.Errorf("write %q: %w", KeyBonding, err)
	}
	return nil
}

// ClearBonding removes the persisted bonding record. Clearing a store with
// no record is a no-op.
func (s *Store) ClearBonding() error {
	if err := s.kv.Delete(KeyBonding); err != nil {
		return fmt.Errorf("delete %q: %w", KeyBonding, err)
	}
	return nil
}

// LoadCCCD returns the persisted subscription flag. The second return value
// is false if no flag has been saved yet.
func (s *Store) LoadCCCD() (uint16, bool, error) {
	blob, ok, err := s.kv.Read(KeyCCCD)
	if err != nil {
		return 0, false, fmt.Errorf("read %q: %w", KeyCCCD, err)
	}
	if !ok {
		return 0, false, nil
	}
	if len(blob) != CCCDSize {
		return 0, false, fmt.Errorf("decode %q: unexpected size %d", KeyCCCD, len(blob))
	}
	return binary.LittleEndian.Uint16(blob), true, nil
}

// SaveCCCD persists the subscription flag.
func (s *Store) SaveCCCD(value uint16) error {
	blob := make([]byte, CCCDSize)
	binary.LittleEndian.PutUint16(blob, value)
	if err := s.kv.Write(KeyCCCD, blob); err != nil {
		return fmt.Errorf("write %q: %w", KeyCCCD, err)
	}
	return nil
}

// LoadIdentityKeys returns the persisted local identity key blob. The second
// return value is false if no blob has been saved yet. The contents are
// owned by the wireless stack and never inspected here.
func (s *Store) LoadIdentityKeys() ([]byte, bool, error) {
	blob, ok, err := s.kv.Read(KeyIdentityKeys)
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", KeyIdentityKeys, err)
	}
	return blob, ok, nil
}

// SaveIdentityKeys persists the local identity key blob.
func (s *Store) SaveIdentityKeys(blob []byte) error {
	if err := s.kv.Write(KeyIdentityKeys, blob); err != nil {
		return fmt.Errorf("write %q: %w", KeyIdentityKeys, err)
	}
	return nil
}
