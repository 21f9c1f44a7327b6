package oob

import (
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/aead/cmac"
)

// Sizes of the derivation inputs and output.
const (
	// RandomSize is the size of the OOB random value used as the MAC key.
	RandomSize = 16

	// PublicKeyXSize is the size of the public key x-coordinate.
	PublicKeyXSize = 32

	// ConfirmationSize is the size of the derived confirmation value.
	ConfirmationSize = 16
)

// ErrDerive reports a failure in the crypto backend while deriving the
// confirmation value. No partial output is exposed on failure.
var ErrDerive = errors.New("confirmation derivation failed")

// DeriveConfirmation computes the LE Secure Connection confirmation value for
// the handover record: AES-128-CMAC over the public key x-coordinate
// concatenated with itself, keyed by the 16-byte random value.
//
// The coordinate-doubled message (x||x rather than x||y) is a pinned
// wire-level contract with the peer's verification and must not be changed.
// Input sizes are fixed and small, so the synchronous computation is bounded
// even when called from a stack callback context.
func DeriveConfirmation(randomValue [RandomSize]byte, publicKeyX [PublicKeyXSize]byte) ([ConfirmationSize]byte, error) {
	var confirmation [ConfirmationSize]byte

	block, err := aes.NewCipher(randomValue[:])
	if err != nil {
		return confirmation, fmt.Errorf("%w: cipher setup: %v", ErrDerive, err)
	}

	msg := make([]byte, 2*PublicKeyXSize)
	copy(msg, publicKeyX[:])
	copy(msg[PublicKeyXSize:], publicKeyX[:])

	mac, err := cmac.Sum(msg, block, aes.BlockSize)
	if err != nil {
		return confirmation, fmt.Errorf("%w: %v", ErrDerive, err)
	}

	copy(confirmation[:], mac)
	return confirmation, nil
}
