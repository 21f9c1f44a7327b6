package coordinator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/handover-protocol/handover-go/pkg/log"
	"github.com/handover-protocol/handover-go/pkg/ndef"
	"github.com/handover-protocol/handover-go/pkg/oob"
	"github.com/handover-protocol/handover-go/pkg/store"
)

// Coordinator errors.
var (
	// ErrProtocolState rejects an event or request that arrived in a state
	// it is not valid in. Never answered with stale data instead.
	ErrProtocolState = errors.New("protocol state violation")

	// ErrNoIdentityKeys reports an identity-key request with nothing stored.
	ErrNoIdentityKeys = errors.New("no identity keys stored")

	// ErrStackDisabled reports a StackEnabled event carrying a failed
	// bring-up status.
	ErrStackDisabled = errors.New("stack bring-up failed")
)

// Sub-field shifts of the 64-bit unique hardware identifier mixed into the
// local address. These select the wafer and die X/Y coordinates, the
// per-device-unique portion of the identifier.
const (
	uniqueIDWaferShift = 24
	uniqueIDDieXShift  = 32
	uniqueIDDieYShift  = 40
)

// Config carries the coordinator's construction parameters.
type Config struct {
	// BaseAddress is the configured device address template (stack byte
	// order). Bytes 3..5 are replaced with unique-identifier sub-fields so
	// each device gets a distinct address.
	BaseAddress [store.PeerAddressSize]byte

	// UniqueID is the 64-bit unique hardware identifier.
	UniqueID uint64

	// Logger receives coordinator events. Nil disables logging.
	Logger log.Logger
}

// Coordinator is the connection-handover state machine. It consumes
// wireless-stack lifecycle events, derives the confirmation value, keeps the
// handover record current on the tag transport and persists bonding state.
//
// All public entry points lock: stack events are serialized by the stack
// collaborator but may interleave with button-triggered commands. Each
// handler runs to completion before the next is accepted.
type Coordinator struct {
	mu sync.Mutex

	cfg     Config
	logger  log.Logger
	state   State
	address [store.PeerAddressSize]byte

	message *ndef.HandoverMessage
	bonding store.BondingRecord
	bonded  bool

	connectionID uint16

	stack StackCommander
	tag   TagTransport
	attrs AttributeServer
	store *store.Store
}

// New creates a Coordinator with injected collaborator handles.
func New(cfg Config, stack StackCommander, tag TagTransport, attrs AttributeServer, st *store.Store) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Coordinator{
		cfg:     cfg,
		logger:  logger,
		state:   StateIdle,
		message: ndef.NewHandoverMessage(),
		stack:   stack,
		tag:     tag,
		attrs:   attrs,
		store:   st,
	}
}

// Start pushes the skeleton handover record to the tag transport. Must be
// called before the stack is enabled so peers never read an empty file;
// later events patch individual fields of this base image.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.message.Snapshot()
	if err := c.tag.WriteFile(NDEFFileID, 0, snapshot); err != nil {
		c.logError(log.SeverityFatal, "tag", "could not write handover record skeleton", err)
		return fmt.Errorf("write skeleton: %w", err)
	}
	c.logTransport(0, len(snapshot))
	return nil
}

// State returns the current coordinator state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Address returns the derived local device address (stack byte order).
// Zero until StackEnabled has been processed.
func (c *Coordinator) Address() [store.PeerAddressSize]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// RecordSnapshot returns a copy of the current handover record image.
func (c *Coordinator) RecordSnapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message.Snapshot()
}

// Bonded reports whether a peer is currently bonded.
func (c *Coordinator) Bonded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bonded
}

// HandleEvent dispatches a stack lifecycle event. The switch is exhaustive
// over the closed Event set.
func (c *Coordinator) HandleEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := event.(type) {
	case StackEnabled:
		return c.handleStackEnabled(ev)
	case OobDataReady:
		return c.handleOobDataReady(ev)
	case LinkConnected:
		return c.handleLinkConnected(ev)
	case LinkDisconnected:
		return c.handleLinkDisconnected()
	case PairingComplete:
		return c.handlePairingComplete()
	case PeerKeysUpdate:
		return c.handlePeerKeysUpdate(ev)
	case IdentityKeysUpdate:
		return c.handleIdentityKeysUpdate(ev)
	case EncryptionEstablished:
		return c.handleEncryptionEstablished(ev)
	case SecurityRequest:
		return c.handleSecurityRequest(ev)
	case AdvertisingStopped:
		return c.handleAdvertisingStopped()
	default:
		return fmt.Errorf("unhandled event type %T", event)
	}
}

func (c *Coordinator) handleStackEnabled(ev StackEnabled) error {
	if c.state != StateIdle {
		return fmt.Errorf("%w: StackEnabled in state %s", ErrProtocolState, c.state)
	}
	if !ev.OK {
		return ErrStackDisabled
	}
	c.setState(StateAddressAssigning, "stack enabled")

	// Mix unique-identifier sub-fields into the configured base address so
	// every device advertises a distinct address.
	addr := c.cfg.BaseAddress
	addr[3] = byte(c.cfg.UniqueID >> uniqueIDWaferShift)
	addr[4] = byte(c.cfg.UniqueID >> uniqueIDDieXShift)
	addr[5] = byte(c.cfg.UniqueID >> uniqueIDDieYShift)
	if err := c.stack.SetLocalAddress(addr); err != nil {
		return fmt.Errorf("set local address: %w", err)
	}
	c.address = addr

	// The address must reach the tag before OOB generation is requested:
	// a peer reading mid-sequence must never see confirmation material
	// computed against a stale address.
	c.message.SetDeviceAddress(addr)
	if err := c.pushField(ndef.DeviceAddressOffset, c.message.DeviceAddressField()); err != nil {
		c.logError(log.SeverityFatal, "tag", "could not write device address to handover record", err)
		return fmt.Errorf("push device address: %w", err)
	}

	// Restore persisted bonding state from the previous session.
	record, err := c.store.LoadBonding()
	if err != nil {
		c.logError(log.SeverityWarn, "store", "could not load bonding record", err)
	} else if record != nil && record.Bonded {
		c.bonding = *record
		c.bonded = true
		if err := c.stack.AddDeviceToResolutionList(record); err != nil {
			c.logError(log.SeverityWarn, "stack", "could not restore address resolution entry", err)
		}
		if cccd, ok, err := c.store.LoadCCCD(); err != nil {
			c.logError(log.SeverityWarn, "store", "could not load subscription flag", err)
		} else if ok {
			c.attrs.SeedSubscription(cccd)
		}
	}

	if err := c.stack.ConfigureAdvertising(); err != nil {
		return fmt.Errorf("configure advertising: %w", err)
	}
	if err := c.stack.RegisterAttributes(); err != nil {
		return fmt.Errorf("register attributes: %w", err)
	}
	if err := c.stack.RequestOOBData(); err != nil {
		return fmt.Errorf("request OOB data: %w", err)
	}
	if err := c.stack.StartAdvertising(); err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}

	c.setState(StateOobPending, "OOB data requested")
	return nil
}

func (c *Coordinator) handleOobDataReady(ev OobDataReady) error {
	if c.state != StateOobPending {
		return fmt.Errorf("%w: OobDataReady in state %s", ErrProtocolState, c.state)
	}

	c.message.SetRandomValue(ev.Random)
	if err := c.pushField(ndef.RandomOffset, c.message.RandomField()); err != nil {
		c.logError(log.SeverityFatal, "tag", "could not write random value to handover record", err)
		return fmt.Errorf("push random value: %w", err)
	}

	confirmation, err := oob.DeriveConfirmation(ev.Random, ev.PublicKeyX)
	if err != nil {
		c.logError(log.SeverityFatal, "oob", "could not derive confirmation value", err)
		return fmt.Errorf("derive confirmation: %w", err)
	}
	c.logger.Log(log.NewEvent(log.SeverityDebug, log.CategoryCrypto, "confirmation value derived"))

	c.message.SetConfirmationValue(confirmation)
	if err := c.pushField(ndef.ConfirmationOffset, c.message.ConfirmationField()); err != nil {
		c.logError(log.SeverityFatal, "tag", "could not write confirmation value to handover record", err)
		return fmt.Errorf("push confirmation value: %w", err)
	}

	c.setState(StateAdvertising, "handover record complete")
	return nil
}

func (c *Coordinator) handleLinkConnected(ev LinkConnected) error {
	if !c.state.connectable() {
		return fmt.Errorf("%w: LinkConnected in state %s", ErrProtocolState, c.state)
	}
	c.connectionID = ev.ConnectionID
	c.setState(StateConnected, "link established")
	return nil
}

func (c *Coordinator) handleLinkDisconnected() error {
	if c.state != StateConnected && c.state != StateBonded {
		return fmt.Errorf("%w: LinkDisconnected in state %s", ErrProtocolState, c.state)
	}
	c.connectionID = 0
	c.setState(StateAdvertising, "link dropped")
	if err := c.stack.StartAdvertising(); err != nil {
		c.logError(log.SeverityWarn, "stack", "could not restart advertising after disconnect", err)
		return fmt.Errorf("restart advertising: %w", err)
	}
	return nil
}

func (c *Coordinator) handlePairingComplete() error {
	if c.state != StateConnected {
		return fmt.Errorf("%w: PairingComplete in state %s", ErrProtocolState, c.state)
	}
	c.bonding.Bonded = true
	c.bonded = true
	if err := c.store.SaveBonding(&c.bonding); err != nil {
		// Degrades restart continuity only; the in-RAM bond stays
		// authoritative for this session.
		c.logError(log.SeverityError, "store", "could not persist bonding record", err)
	} else {
		c.logStore("write", store.KeyBonding)
	}
	c.setState(StateBonded, "pairing complete")
	return nil
}

func (c *Coordinator) handlePeerKeysUpdate(ev PeerKeysUpdate) error {
	c.bonding.PeerAddress = ev.PeerAddress
	c.bonding.LinkKeys = ev.LinkKeys
	return nil
}

func (c *Coordinator) handleIdentityKeysUpdate(ev IdentityKeysUpdate) error {
	// Identity continuity across restart is load-bearing for peers using
	// resolvable addresses, so a write failure fails the event.
	if err := c.store.SaveIdentityKeys(ev.Keys); err != nil {
		c.logError(log.SeverityError, "store", "could not persist identity keys", err)
		return fmt.Errorf("persist identity keys: %w", err)
	}
	c.logStore("write", store.KeyIdentityKeys)
	return nil
}

func (c *Coordinator) handleEncryptionEstablished(ev EncryptionEstablished) error {
	if c.bonded && ev.PeerAddress == c.bonding.PeerAddress {
		// The peer's prior subscription resumes without a new CCCD write.
		c.attrs.RestoreSubscription()
	}
	return nil
}

func (c *Coordinator) handleSecurityRequest(ev SecurityRequest) error {
	if err := c.stack.GrantSecurity(ev.PeerAddress); err != nil {
		return fmt.Errorf("grant security: %w", err)
	}
	return nil
}

func (c *Coordinator) handleAdvertisingStopped() error {
	if c.connectionID != 0 {
		return nil
	}
	// Advertising must not silently stay off while no link exists.
	if err := c.stack.StartAdvertising(); err != nil {
		c.logError(log.SeverityWarn, "stack", "could not restart advertising", err)
		return fmt.Errorf("restart advertising: %w", err)
	}
	return nil
}

// PeerKeys returns the in-RAM peer link keys. Fails while unbonded: the
// peer is unknown and stale data is never substituted.
func (c *Coordinator) PeerKeys() ([store.LinkKeysSize]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.bonded {
		return [store.LinkKeysSize]byte{}, fmt.Errorf("%w: peer keys requested while unbonded", ErrProtocolState)
	}
	return c.bonding.LinkKeys, nil
}

// IdentityKeys loads the persisted local identity keys. A missing blob
// fails the request.
func (c *Coordinator) IdentityKeys() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	blob, ok, err := c.store.LoadIdentityKeys()
	if err != nil {
		return nil, fmt.Errorf("load identity keys: %w", err)
	}
	if !ok {
		return nil, ErrNoIdentityKeys
	}
	c.logStore("read", store.KeyIdentityKeys)
	return blob, nil
}

// SendNotification triggers the momentary notification pulse towards the
// connected peer. No-op while unsubscribed or disconnected.
func (c *Coordinator) SendNotification() error {
	// The attribute server owns subscription and link state and performs
	// its own gating; no coordinator state is read here.
	return c.attrs.SendNotificationPulse()
}

// ResetBonding clears the bond in RAM, in the store and in the stack, then
// restarts advertising. Idempotent and safe to call with no active bond.
func (c *Coordinator) ResetBonding() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stack.StopAdvertising(); err != nil {
		c.logError(log.SeverityError, "stack", "could not stop advertising", err)
		return fmt.Errorf("stop advertising: %w", err)
	}
	if c.bonded {
		if err := c.stack.ForgetBondedPeer(c.bonding.PeerAddress); err != nil {
			c.logError(log.SeverityWarn, "stack", "could not clear stack bond data", err)
		}
		c.bonding = store.BondingRecord{}
		c.bonded = false
		if err := c.store.ClearBonding(); err != nil {
			c.logError(log.SeverityWarn, "store", "could not clear persisted bonding record", err)
		}
	}
	if err := c.stack.ClearResolutionList(); err != nil {
		c.logError(log.SeverityWarn, "stack", "could not clear address resolution list", err)
	}
	if err := c.stack.StartAdvertising(); err != nil {
		c.logError(log.SeverityWarn, "stack", "could not restart advertising", err)
	}
	if c.state == StateBonded {
		c.setState(StateConnected, "bond reset")
	}
	return nil
}

// pushField writes the given field bytes to the tag at its record offset.
func (c *Coordinator) pushField(offset int, field []byte) error {
	if err := c.tag.WriteFile(NDEFFileID, offset, field); err != nil {
		return err
	}
	c.logTransport(offset, len(field))
	return nil
}

func (c *Coordinator) setState(next State, reason string) {
	if next == c.state {
		return
	}
	event := log.NewEvent(log.SeverityInfo, log.CategoryState, "state transition")
	event.StateChange = &log.StateChangeEvent{
		OldState: c.state.String(),
		NewState: next.String(),
		Reason:   reason,
	}
	c.logger.Log(event)
	c.state = next
}

func (c *Coordinator) logTransport(offset, size int) {
	event := log.NewEvent(log.SeverityDebug, log.CategoryTransport, "handover record pushed")
	event.Transport = &log.TransportEvent{FileID: NDEFFileID, Offset: offset, Size: size}
	c.logger.Log(event)
}

func (c *Coordinator) logStore(op, key string) {
	event := log.NewEvent(log.SeverityDebug, log.CategoryStore, "store "+op)
	event.StoreIO = &log.StoreIOEvent{Op: op, Key: key}
	c.logger.Log(event)
}

func (c *Coordinator) logError(severity log.Severity, layer, msg string, err error) {
	event := log.NewEvent(severity, log.CategoryError, msg)
	event.Error = &log.ErrorEventData{Layer: layer, Message: err.Error(), Context: msg}
	c.logger.Log(event)
}
