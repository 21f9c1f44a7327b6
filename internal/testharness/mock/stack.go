// Package mock provides recording collaborator implementations for testing
// the coordinator against scripted stack and transport behavior.
package mock

import (
	"sync"

	"github.com/handover-protocol/handover-go/pkg/store"
)

// Stack command names, used as Calls entries and Failures keys.
const (
	CmdSetLocalAddress           = "SetLocalAddress"
	CmdConfigureAdvertising      = "ConfigureAdvertising"
	CmdRegisterAttributes        = "RegisterAttributes"
	CmdStartAdvertising          = "StartAdvertising"
	CmdStopAdvertising           = "StopAdvertising"
	CmdRequestOOBData            = "RequestOOBData"
	CmdGrantSecurity             = "GrantSecurity"
	CmdAddDeviceToResolutionList = "AddDeviceToResolutionList"
	CmdClearResolutionList       = "ClearResolutionList"
	CmdForgetBondedPeer          = "ForgetBondedPeer"
)

// StackCommander is a recording mock of the wireless stack's command
// surface. Commands append to Calls in invocation order; a command fails
// when Failures carries an error under its name.
type StackCommander struct {
	mu sync.Mutex

	// Calls is the ordered list of invoked command names.
	Calls []string

	// Failures maps command names to the error they should return.
	Failures map[string]error

	// LocalAddress is the last address passed to SetLocalAddress.
	LocalAddress [store.PeerAddressSize]byte

	// ResolutionList collects records passed to AddDeviceToResolutionList.
	ResolutionList []*store.BondingRecord

	// Granted collects peers passed to GrantSecurity.
	Granted [][store.PeerAddressSize]byte

	// Forgotten collects peers passed to ForgetBondedPeer.
	Forgotten [][store.PeerAddressSize]byte

	// Advertising mirrors the last start/stop command.
	Advertising bool
}

// NewStackCommander creates a mock with no scripted failures.
func NewStackCommander() *StackCommander {
	return &StackCommander{Failures: make(map[string]error)}
}

func (s *StackCommander) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, name)
	return s.Failures[name]
}

// CallCount returns how often the named command was invoked.
func (s *StackCommander) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// CallOrder returns the index of the first invocation of name, or -1.
func (s *StackCommander) CallOrder(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.Calls {
		if c == name {
			return i
		}
	}
	return -1
}

// SetLocalAddress records the address.
func (s *StackCommander) SetLocalAddress(addr [store.PeerAddressSize]byte) error {
	err := s.record(CmdSetLocalAddress)
	if err == nil {
		s.mu.Lock()
		s.LocalAddress = addr
		s.mu.Unlock()
	}
	return err
}

// ConfigureAdvertising records the call.
func (s *StackCommander) ConfigureAdvertising() error {
	return s.record(CmdConfigureAdvertising)
}

// RegisterAttributes records the call.
func (s *StackCommander) RegisterAttributes() error {
	return s.record(CmdRegisterAttributes)
}

// StartAdvertising records the call.
func (s *StackCommander) StartAdvertising() error {
	err := s.record(CmdStartAdvertising)
	if err == nil {
		s.mu.Lock()
		s.Advertising = true
		s.mu.Unlock()
	}
	return err
}

// StopAdvertising records the call.
func (s *StackCommander) StopAdvertising() error {
	err := s.record(CmdStopAdvertising)
	if err == nil {
		s.mu.Lock()
		s.Advertising = false
		s.mu.Unlock()
	}
	return err
}

// RequestOOBData records the call.
func (s *StackCommander) RequestOOBData() error {
	return s.record(CmdRequestOOBData)
}

// GrantSecurity records the peer.
func (s *StackCommander) GrantSecurity(peer [store.PeerAddressSize]byte) error {
	err := s.record(CmdGrantSecurity)
	if err == nil {
		s.mu.Lock()
		s.Granted = append(s.Granted, peer)
		s.mu.Unlock()
	}
	return err
}

// AddDeviceToResolutionList records the bonding record.
func (s *StackCommander) AddDeviceToResolutionList(record *store.BondingRecord) error {
	err := s.record(CmdAddDeviceToResolutionList)
	if err == nil {
		s.mu.Lock()
		s.ResolutionList = append(s.ResolutionList, record)
		s.mu.Unlock()
	}
	return err
}

// ClearResolutionList records the call and empties the list.
func (s *StackCommander) ClearResolutionList() error {
	err := s.record(CmdClearResolutionList)
	if err == nil {
		s.mu.Lock()
		s.ResolutionList = nil
		s.mu.Unlock()
	}
	return err
}

// ForgetBondedPeer records the peer.
func (s *StackCommander) ForgetBondedPeer(peer [store.PeerAddressSize]byte) error {
	err := s.record(CmdForgetBondedPeer)
	if err == nil {
		s.mu.Lock()
		s.Forgotten = append(s.Forgotten, peer)
		s.mu.Unlock()
	}
	return err
}
