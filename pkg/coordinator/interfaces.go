package coordinator

import (
	"github.com/handover-protocol/handover-go/pkg/store"
)

// StackCommander is the command surface of the wireless-stack collaborator.
// The stack reports boolean success only, so every command returns a bare
// error with no sub-detail assumed.
type StackCommander interface {
	// SetLocalAddress sets the stack's local device address (stack byte
	// order, least-significant byte first).
	SetLocalAddress(addr [store.PeerAddressSize]byte) error

	// ConfigureAdvertising installs the advertising payload and enables
	// pairable mode.
	ConfigureAdvertising() error

	// RegisterAttributes attaches the attribute table to the stack's
	// attribute server.
	RegisterAttributes() error

	// StartAdvertising enables connectable advertising.
	StartAdvertising() error

	// StopAdvertising disables advertising.
	StopAdvertising() error

	// RequestOOBData asks the stack to generate local OOB pairing material.
	// The result arrives later as an OobDataReady event.
	RequestOOBData() error

	// GrantSecurity accepts a peer's security request.
	GrantSecurity(peer [store.PeerAddressSize]byte) error

	// AddDeviceToResolutionList installs a bonded peer's link keys into the
	// stack's address resolution list.
	AddDeviceToResolutionList(record *store.BondingRecord) error

	// ClearResolutionList removes all entries from the address resolution
	// list.
	ClearResolutionList() error

	// ForgetBondedPeer removes the stack's bond with the given peer.
	ForgetBondedPeer(peer [store.PeerAddressSize]byte) error
}

// TagTransport is the passive-tag collaborator the handover record is
// pushed to. Offsets are exactly the record's documented field offsets.
type TagTransport interface {
	// WriteFile writes data to the tag file at the given byte offset.
	WriteFile(fileID uint16, offset int, data []byte) error
}

// NDEFFileID is the tag file holding the handover record.
const NDEFFileID uint16 = 0xE104

// AttributeServer is the attribute-server adapter surface the coordinator
// drives. It is satisfied by *gatt.Server.
type AttributeServer interface {
	// SeedSubscription installs a restored subscription flag into RAM and
	// the live attribute table without persisting it again.
	SeedSubscription(value uint16)

	// RestoreSubscription re-applies the in-RAM subscription flag to the
	// live attribute table after a reconnect with a bonded peer.
	RestoreSubscription()

	// SendNotificationPulse sends the momentary active/inactive toggle to
	// the connected peer. No-op while unsubscribed or disconnected.
	SendNotificationPulse() error
}
