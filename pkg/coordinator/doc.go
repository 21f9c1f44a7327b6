// Package coordinator implements the connection-handover state machine.
//
// # Overview
//
// The coordinator sits between three collaborators: the wireless stack
// (which delivers lifecycle events and accepts commands), the passive tag
// transport (which exposes the handover record to peers) and the key-value
// store (which carries bonding, identity-key and subscription state across
// restarts). As pairing material becomes available the coordinator patches
// the handover record in RAM and pushes the affected field bytes to the tag.
//
// # Event ordering
//
// Stack events arrive serialized in a fixed, externally imposed order. The
// one ordering rule the coordinator itself enforces is that OOB data is
// requested only after the local address has been assigned and pushed to the
// record: a peer reading the record mid-sequence must never observe a
// confirmation or random value computed against a stale address. A
// misordered OobDataReady is rejected with ErrProtocolState, never silently
// processed.
//
// # Failure policy
//
// Store and tag-transport write failures are transient I/O: logged, with the
// in-RAM state staying authoritative for the session. Two exceptions carry
// more weight: a failed identity-key write fails its event (identity
// continuity is load-bearing for resolvable-address peers), and a failed
// confirmation derivation is logged at FATAL severity because it breaks the
// advertised handover use case, while the device itself stays connectable.
package coordinator
