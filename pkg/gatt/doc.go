// Package gatt adapts the wireless stack's attribute-server callbacks.
//
// The Server owns the ephemeral connection handle (0 while disconnected),
// services peer read and write requests against a fixed attribute table,
// and mirrors the peer's notification subscription (CCCD) both in RAM and
// in the persistent store so the subscription survives restarts. It also
// produces the momentary notification pulse the button's short press
// triggers: the report value goes active, then reverts after a fixed pulse
// width.
//
// Link connect/disconnect events pass through HandleConnectionStatus and
// are forwarded to hooks installed with SetLinkHooks; wiring them to the
// coordinator keeps this package free of a coordinator dependency apart
// from the interface satisfaction check.
package gatt
