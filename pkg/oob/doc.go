// Package oob derives the LE Secure Connection confirmation value shared
// with peers through the handover record.
//
// The derivation is AES-128-CMAC keyed by the 16-byte OOB random value over
// a message formed by concatenating the public key's x-coordinate with
// itself. That exact construction is what the reference peers verify
// against; it is preserved byte for byte rather than replaced with the
// x||y construction other profiles use.
package oob
