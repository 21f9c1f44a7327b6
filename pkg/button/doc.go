// Package button classifies physical button input into coordinator
// commands.
//
// The classifier is a debounced edge detector driven by a periodic tick
// source and press/release interrupts: the press edge records the current
// tick count, the release edge computes the elapsed time and dispatches
// either the notify command (short press) or the bonding reset (press held
// past the long-press threshold). The interrupt context only signals edges;
// all dispatch runs on the caller's goroutine.
package button
