package coordinator

import (
	"github.com/handover-protocol/handover-go/pkg/oob"
	"github.com/handover-protocol/handover-go/pkg/store"
)

// Event is the closed set of wireless-stack lifecycle events the coordinator
// consumes. Each variant carries its own payload struct; the dispatch in
// Coordinator.HandleEvent is an exhaustive type switch, so adding a variant
// without handling it fails at the switch's default arm in tests.
//
// Events are delivered serialized by the stack collaborator; the coordinator
// never sees two events concurrently, but events may interleave with
// button-triggered commands.
type Event interface {
	isEvent()
}

// StackEnabled reports that the wireless stack finished bring-up.
// Successful handling assigns the local address, mirrors it into the
// handover record, restores persisted bonding state and requests OOB data
// generation.
type StackEnabled struct {
	// OK reports whether stack bring-up succeeded.
	OK bool
}

// OobDataReady delivers the locally generated OOB pairing material.
type OobDataReady struct {
	// PublicKeyX is the x-coordinate of the ephemeral public key the stack
	// generated for this pairing.
	PublicKeyX [oob.PublicKeyXSize]byte

	// Random is the OOB random value peers verify the confirmation against.
	Random [oob.RandomSize]byte
}

// LinkConnected reports an established link.
type LinkConnected struct {
	// ConnectionID is the stack's handle for the new link.
	ConnectionID uint16
}

// LinkDisconnected reports that the current link dropped.
type LinkDisconnected struct{}

// PairingComplete reports that the security procedure finished and the peer
// is now bonded.
type PairingComplete struct{}

// PeerKeysUpdate delivers refreshed peer link keys. The update is kept in
// RAM only; persistence happens on PairingComplete.
type PeerKeysUpdate struct {
	// PeerAddress is the peer's device address (stack byte order).
	PeerAddress [store.PeerAddressSize]byte

	// LinkKeys is the peer's opaque link-key blob.
	LinkKeys [store.LinkKeysSize]byte
}

// IdentityKeysUpdate delivers refreshed local identity key material to be
// mirrored into persistent storage.
type IdentityKeysUpdate struct {
	// Keys is the opaque identity key blob. Never inspected.
	Keys []byte
}

// EncryptionEstablished reports that the link to peer is now encrypted.
type EncryptionEstablished struct {
	// PeerAddress is the encrypted peer's device address.
	PeerAddress [store.PeerAddressSize]byte
}

// SecurityRequest reports a peer asking to start the security procedure.
// Always granted.
type SecurityRequest struct {
	// PeerAddress is the requesting peer's device address.
	PeerAddress [store.PeerAddressSize]byte
}

// AdvertisingStopped reports that advertising went off. While no link
// exists the coordinator restarts it so the device never silently
// disappears.
type AdvertisingStopped struct{}

func (StackEnabled) isEvent()          {}
func (OobDataReady) isEvent()          {}
func (LinkConnected) isEvent()         {}
func (LinkDisconnected) isEvent()      {}
func (PairingComplete) isEvent()       {}
func (PeerKeysUpdate) isEvent()        {}
func (IdentityKeysUpdate) isEvent()    {}
func (EncryptionEstablished) isEvent() {}
func (SecurityRequest) isEvent()       {}
func (AdvertisingStopped) isEvent()    {}
