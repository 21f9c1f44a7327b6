package main

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
	"os"
	"sync"

	"github.com/handover-protocol/handover-go/pkg/coordinator"
	"github.com/handover-protocol/handover-go/pkg/gatt"
	"github.com/handover-protocol/handover-go/pkg/log"
	"github.com/handover-protocol/handover-go/pkg/oob"
	"github.com/handover-protocol/handover-go/pkg/store"
)

var (
	_ coordinator.StackCommander = (*SimStack)(nil)
	_ coordinator.TagTransport   = (*SimTag)(nil)
	_ gatt.Notifier              = (*SimStack)(nil)
)

// SimStack simulates the wireless controller. It accepts the coordinator's
// commands, generates OOB pairing material on request and lets the
// interactive console script a peer's side of the pairing flow.
type SimStack struct {
	mu sync.Mutex

	logger   log.Logger
	tag      *SimTag
	attrs    *gatt.Server
	dispatch func(coordinator.Event) error

	advertising bool
	nextConn    uint16
	connID      uint16
	peerAddr    [store.PeerAddressSize]byte
}

// SimTag is an in-memory passive tag. Writes land in per-file images a
// peer's reader would see.
type SimTag struct {
	mu    sync.Mutex
	files map[uint16][]byte
}

// NewSimStack creates a simulated stack with an empty tag.
func NewSimStack(logger log.Logger) *SimStack {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &SimStack{
		logger:   logger,
		tag:      &SimTag{files: make(map[uint16][]byte)},
		nextConn: 1,
	}
}

// Attach wires the attribute server and the coordinator's event entry
// point. Must be called before Enable.
func (s *SimStack) Attach(attrs *gatt.Server, dispatch func(coordinator.Event) error) {
	s.attrs = attrs
	s.dispatch = dispatch
}

// Tag returns the simulated tag transport.
func (s *SimStack) Tag() *SimTag {
	return s.tag
}

// Enable reports successful stack bring-up to the coordinator.
func (s *SimStack) Enable() {
	s.deliver(coordinator.StackEnabled{OK: true})
}

func (s *SimStack) deliver(ev coordinator.Event) {
	if err := s.dispatch(ev); err != nil {
		fmt.Fprintf(os.Stderr, "[SIM] %T rejected: %v\n", ev, err)
		event := log.NewEvent(log.SeverityWarn, log.CategoryError, "simulated stack event rejected")
		event.Error = &log.ErrorEventData{Layer: "sim", Message: err.Error()}
		s.logger.Log(event)
	}
}

// SetLocalAddress accepts the address.
func (s *SimStack) SetLocalAddress(addr [store.PeerAddressSize]byte) error {
	return nil
}

// ConfigureAdvertising accepts the advertising configuration.
func (s *SimStack) ConfigureAdvertising() error {
	return nil
}

// RegisterAttributes accepts the attribute registration.
func (s *SimStack) RegisterAttributes() error {
	return nil
}

// StartAdvertising marks the device connectable.
func (s *SimStack) StartAdvertising() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advertising = true
	return nil
}

// StopAdvertising marks the device not connectable.
func (s *SimStack) StopAdvertising() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advertising = false
	return nil
}

// RequestOOBData generates an ephemeral P-256 key and a random value and
// delivers them asynchronously, the way a controller's completion event
// arrives after the requesting command returns.
func (s *SimStack) RequestOOBData() error {
	go func() {
		key, err := ecdh.P256().GenerateKey(rand.Reader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[SIM] OOB key generation failed: %v\n", err)
			return
		}
		var pubX [oob.PublicKeyXSize]byte
		// Uncompressed point encoding: 0x04 || X || Y.
		copy(pubX[:], key.PublicKey().Bytes()[1:1+oob.PublicKeyXSize])

		var random [oob.RandomSize]byte
		if _, err := rand.Read(random[:]); err != nil {
			fmt.Fprintf(os.Stderr, "[SIM] OOB random generation failed: %v\n", err)
			return
		}
		s.deliver(coordinator.OobDataReady{PublicKeyX: pubX, Random: random})
	}()
	return nil
}

// GrantSecurity accepts the grant.
func (s *SimStack) GrantSecurity(peer [store.PeerAddressSize]byte) error {
	return nil
}

// AddDeviceToResolutionList accepts the entry.
func (s *SimStack) AddDeviceToResolutionList(record *store.BondingRecord) error {
	return nil
}

// ClearResolutionList accepts the clear.
func (s *SimStack) ClearResolutionList() error {
	return nil
}

// ForgetBondedPeer accepts the removal.
func (s *SimStack) ForgetBondedPeer(peer [store.PeerAddressSize]byte) error {
	return nil
}

// Notify prints the notification a connected peer would receive.
func (s *SimStack) Notify(connectionID uint16, handle uint16, value []byte) error {
	fmt.Printf("[SIM] notification conn=%d handle=0x%04X value=%X\n", connectionID, handle, value)
	return nil
}

// Advertising reports whether the device is currently connectable.
func (s *SimStack) Advertising() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advertising
}

// Connected reports whether a simulated peer link is up.
func (s *SimStack) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connID != 0
}

// PeerConnect simulates a peer establishing a link.
func (s *SimStack) PeerConnect() error {
	s.mu.Lock()
	if !s.advertising {
		s.mu.Unlock()
		return fmt.Errorf("device is not advertising")
	}
	if s.connID != 0 {
		s.mu.Unlock()
		return fmt.Errorf("a peer is already connected")
	}
	s.connID = s.nextConn
	s.nextConn++
	s.advertising = false
	connID := s.connID
	s.mu.Unlock()

	s.attrs.HandleConnectionStatus(connID, true)
	return nil
}

// PeerDisconnect simulates the peer dropping the link.
func (s *SimStack) PeerDisconnect() error {
	s.mu.Lock()
	if s.connID == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no peer connected")
	}
	connID := s.connID
	s.connID = 0
	s.mu.Unlock()

	s.attrs.HandleConnectionStatus(connID, false)
	return nil
}

// PeerPair simulates the connected peer running the complete OOB pairing
// procedure: security request, key distribution, pairing completion and
// link encryption.
func (s *SimStack) PeerPair() error {
	s.mu.Lock()
	if s.connID == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no peer connected")
	}
	s.mu.Unlock()

	peer, err := randomPeerAddress()
	if err != nil {
		return err
	}
	var linkKeys [store.LinkKeysSize]byte
	if _, err := rand.Read(linkKeys[:]); err != nil {
		return fmt.Errorf("generate link keys: %w", err)
	}
	identity := make([]byte, store.LinkKeysSize)
	if _, err := rand.Read(identity); err != nil {
		return fmt.Errorf("generate identity keys: %w", err)
	}

	s.mu.Lock()
	s.peerAddr = peer
	s.mu.Unlock()

	caps := coordinator.Capabilities()
	fmt.Printf("[SIM] pairing features: io=0x%02X oob=%v sc=%v bonding=%v keysize=%d\n",
		caps.IOCapability, caps.OOBDataPresent, caps.SecureConnections, caps.Bonding, caps.MaxKeySize)

	s.deliver(coordinator.SecurityRequest{PeerAddress: peer})
	s.deliver(coordinator.PeerKeysUpdate{PeerAddress: peer, LinkKeys: linkKeys})
	s.deliver(coordinator.IdentityKeysUpdate{Keys: identity})
	s.deliver(coordinator.PairingComplete{})
	s.deliver(coordinator.EncryptionEstablished{PeerAddress: peer})
	return nil
}

// PeerEncrypt simulates the bonded peer re-encrypting a fresh link, the
// reconnect path that resumes the stored subscription.
func (s *SimStack) PeerEncrypt() error {
	s.mu.Lock()
	if s.connID == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no peer connected")
	}
	peer := s.peerAddr
	s.mu.Unlock()

	s.deliver(coordinator.EncryptionEstablished{PeerAddress: peer})
	return nil
}

// PeerSubscribe simulates the peer writing the notification CCCD.
func (s *SimStack) PeerSubscribe(enable bool) error {
	value := []byte{0x00, 0x00}
	if enable {
		value[0] = 0x01
	}
	return s.attrs.Write(gatt.ReportCCCDHandle, value)
}

func randomPeerAddress() ([store.PeerAddressSize]byte, error) {
	var addr [store.PeerAddressSize]byte
	if _, err := rand.Read(addr[:]); err != nil {
		return addr, fmt.Errorf("generate peer address: %w", err)
	}
	return addr, nil
}

// WriteFile applies a record write to the tag image.
func (t *SimTag) WriteFile(fileID uint16, offset int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	file := t.files[fileID]
	if need := offset + len(data); need > len(file) {
		grown := make([]byte, need)
		copy(grown, file)
		file = grown
	}
	copy(file[offset:], data)
	t.files[fileID] = file
	return nil
}

// Image returns a copy of the tag file, the bytes a reader would see.
func (t *SimTag) Image(fileID uint16) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	file := t.files[fileID]
	out := make([]byte, len(file))
	copy(out, file)
	return out
}
