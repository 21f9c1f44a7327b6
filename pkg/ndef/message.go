package ndef

import "fmt"

// Fixed layout of the connection handover record. These are wire-format
// constants shared with peers reading the record over the passive tag
// interface; they must match the documented layout exactly.
const (
	// MessageLength is the total length of the handover record in bytes.
	MessageLength = 115

	// RecordType is the NDEF record type name carried in the header.
	RecordType = "application/vnd.bluetooth.le.oob"

	// DeviceAddressOffset is the byte offset of the 6-byte device address.
	DeviceAddressOffset = 39

	// DeviceAddressLength is the length of the device address field.
	DeviceAddressLength = 6

	// ConfirmationOffset is the byte offset of the 16-byte LE Secure
	// Connection confirmation value.
	ConfirmationOffset = 78

	// RandomOffset is the byte offset of the 16-byte LE Secure Connection
	// random value.
	RandomOffset = 96

	// ValueLength is the length of the confirmation and random fields.
	ValueLength = 16
)

// skeleton is the initial handover record image. Populated according to
// "NFC Forum: Bluetooth Secure Simple Pairing Using NFC" using the simplified
// tag format. The address, confirmation and random fields start as
// placeholders and are overwritten as pairing material becomes available;
// every other byte is constant for the lifetime of the message.
var skeleton = [MessageLength]byte{
	// NDEF message length
	0x00, 0x23 + 0x4E,
	// NDEF record header
	0xD2,
	// Record type length
	0x20,
	// Payload length
	0x4E,
	// Record type name: application/vnd.bluetooth.le.oob
	0x61, 0x70, 0x70, 0x6C, 0x69, 0x63, 0x61, 0x74, 0x69, 0x6F, 0x6E, 0x2F, 0x76, 0x6E, 0x64, 0x2E,
	0x62, 0x6C, 0x75, 0x65, 0x74, 0x6F, 0x6F, 0x74, 0x68, 0x2E, 0x6C, 0x65, 0x2E, 0x6F, 0x6F, 0x62,
	// Payload
	// Device address (1B length, 1B data type, 6B address, 1B address type)
	0x08, 0x1B, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00,
	// Role (1B length, 1B data type, 1B role "Peripheral")
	0x02, 0x1C, 0x00,
	// Local name (1B length, 1B data type, 3B name "NBT")
	0x04, 0x09, 0x4E, 0x42, 0x54,
	// Appearance (1B length, 1B data type, 2B appearance "HID: Mouse")
	0x03, 0x19, 0xC2, 0x03,
	// Security Manager TK (1B length, 1B data type, 16B key, unused)
	0x11, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	// LE Secure Connection confirmation value (1B length, 1B data type, 16B value)
	0x11, 0x22, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	// LE Secure Connection random value (1B length, 1B data type, 16B value)
	0x11, 0x23, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	// LE OOB flags (1B length, 1B data type, 1B flags: general discoverable, BR/EDR unsupported)
	0x02, 0x01, 0x06,
}

func init() {
	// The layout constants above are a wire contract; fail fast if the
	// skeleton ever drifts from them.
	if got := string(skeleton[5 : 5+0x20]); got != RecordType {
		panic(fmt.Sprintf("ndef: skeleton record type %q does not match %q", got, RecordType))
	}
	for name, check := range map[string]bool{
		"address field header":      skeleton[DeviceAddressOffset-2] == 0x08 && skeleton[DeviceAddressOffset-1] == 0x1B,
		"confirmation field header": skeleton[ConfirmationOffset-2] == 0x11 && skeleton[ConfirmationOffset-1] == 0x22,
		"random field header":       skeleton[RandomOffset-2] == 0x11 && skeleton[RandomOffset-1] == 0x23,
	} {
		if !check {
			panic("ndef: skeleton layout does not match documented offsets: " + name)
		}
	}
}

// HandoverMessage is the in-memory image of the connection handover record.
// It is constructed once at startup and mutated in place as pairing material
// arrives; only the address, confirmation and random sub-ranges ever change.
// The zero value is not usable; create instances with NewHandoverMessage.
//
// HandoverMessage is not safe for concurrent use. The coordinator is its
// only writer and serializes access.
type HandoverMessage struct {
	buf [MessageLength]byte
}

// NewHandoverMessage creates a handover message with placeholder address,
// confirmation and random fields.
func NewHandoverMessage() *HandoverMessage {
	m := &HandoverMessage{}
	m.buf = skeleton
	return m
}

// SetDeviceAddress writes the device address field. The stack reports
// addresses least-significant-byte first while the record carries them
// most-significant-byte first, so the bytes are written in reversed order.
func (m *HandoverMessage) SetDeviceAddress(addr [DeviceAddressLength]byte) {
	for i := 0; i < DeviceAddressLength; i++ {
		m.buf[DeviceAddressOffset+i] = addr[DeviceAddressLength-1-i]
	}
}

// SetConfirmationValue writes the LE Secure Connection confirmation value field.
func (m *HandoverMessage) SetConfirmationValue(value [ValueLength]byte) {
	copy(m.buf[ConfirmationOffset:ConfirmationOffset+ValueLength], value[:])
}

// SetRandomValue writes the LE Secure Connection random value field.
func (m *HandoverMessage) SetRandomValue(value [ValueLength]byte) {
	copy(m.buf[RandomOffset:RandomOffset+ValueLength], value[:])
}

// Snapshot returns a copy of the full current record image.
func (m *HandoverMessage) Snapshot() []byte {
	out := make([]byte, MessageLength)
	copy(out, m.buf[:])
	return out
}

// DeviceAddressField returns a copy of the current device address field bytes
// (record order, most-significant-byte first).
func (m *HandoverMessage) DeviceAddressField() []byte {
	return m.field(DeviceAddressOffset, DeviceAddressLength)
}

// ConfirmationField returns a copy of the current confirmation value field bytes.
func (m *HandoverMessage) ConfirmationField() []byte {
	return m.field(ConfirmationOffset, ValueLength)
}

// RandomField returns a copy of the current random value field bytes.
func (m *HandoverMessage) RandomField() []byte {
	return m.field(RandomOffset, ValueLength)
}

func (m *HandoverMessage) field(offset, length int) []byte {
	out := make([]byte, length)
	copy(out, m.buf[offset:offset+length])
	return out
}
