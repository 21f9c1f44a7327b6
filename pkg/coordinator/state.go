package coordinator

// State is the coordinator's position in the pairing lifecycle. Transitions
// are driven by external event arrival, never polled.
type State uint8

const (
	// StateIdle is before the stack reported bring-up.
	StateIdle State = iota

	// StateAddressAssigning is the transient state while the local address
	// is derived, installed and mirrored into the handover record.
	StateAddressAssigning

	// StateOobPending means advertising is live and OOB data generation has
	// been requested but not produced yet.
	StateOobPending

	// StateAdvertising means the handover record is complete and the device
	// is connectable.
	StateAdvertising

	// StateConnected means a link is established.
	StateConnected

	// StateBonded means the security procedure completed on the current
	// link and the bond is persisted.
	StateBonded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAddressAssigning:
		return "ADDRESS_ASSIGNING"
	case StateOobPending:
		return "OOB_PENDING"
	case StateAdvertising:
		return "ADVERTISING"
	case StateConnected:
		return "CONNECTED"
	case StateBonded:
		return "BONDED"
	default:
		return "UNKNOWN"
	}
}

// connectable reports whether a peer can establish a link in this state.
func (s State) connectable() bool {
	return s == StateOobPending || s == StateAdvertising
}
