// Package store persists the coordinator's bonding, identity-key and
// notification-subscription state across restarts.
//
// The persistence collaborator is the KV interface: a flat key to
// fixed-size-blob cache with no transactions and no versioning, the same
// shape as the device firmware's credential cache. Two implementations
// ship with the package: FileKV (a single JSON file, the durable choice)
// and MemoryKV (tests and demos).
//
// Store wraps a KV with typed load/save operations. The bonding record is
// CBOR-encoded with deterministic options; the CCCD flag is a little-endian
// uint16; identity keys pass through as an opaque blob that is never
// inspected. A missing key is a normal outcome reported as absence, not an
// error.
package store
