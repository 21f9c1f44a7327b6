package coordinator

// PairingCapabilities is the fixed capability set reported when the stack
// asks how to answer a pairing request. The device has no display and no
// keyboard; authentication rests entirely on the OOB channel.
type PairingCapabilities struct {
	// IOCapability is the IO capability code (0x03, no input no output).
	IOCapability uint8

	// OOBDataPresent reports that OOB authentication data is available.
	OOBDataPresent bool

	// SecureConnections requires LE Secure Connections pairing.
	SecureConnections bool

	// Bonding requests that the resulting keys be stored.
	Bonding bool

	// MaxKeySize is the maximum encryption key size in octets.
	MaxKeySize uint8
}

// ioCapabilityNone is the "no input, no output" IO capability code.
const ioCapabilityNone uint8 = 0x03

// Capabilities returns the device's pairing capability set.
func Capabilities() PairingCapabilities {
	return PairingCapabilities{
		IOCapability:      ioCapabilityNone,
		OOBDataPresent:    true,
		SecureConnections: true,
		Bonding:           true,
		MaxKeySize:        16,
	}
}
