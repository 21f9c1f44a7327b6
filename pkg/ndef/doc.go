// Package ndef holds the in-memory image of the BLE connection handover
// record exposed to peers over the passive tag interface.
//
// The record is a single NDEF message of fixed length with the record type
// application/vnd.bluetooth.le.oob. Its layout, total length and field
// offsets are compile-time constants pinned to the format peers parse;
// only the device address, confirmation value and random value sub-ranges
// are mutable. The coordinator owns the message, updates fields in place as
// pairing material arrives and pushes the affected bytes to the tag
// transport at exactly the documented field offsets.
package ndef
