package scripttype

import (
	"crypto/sha256"

	// RIPEMD160 is deprecated but REQUIRED by Bitcoin protocol (BIP-13, BIP-16).
	// P2PKH/P2SH/P2WKH addresses use Hash160 = RIPEMD160(SHA256(data)).
	//nolint:gosec,staticcheck // G507,SA1019: required by Bitcoin protocol
	"golang.org/x/crypto/ripemd160"
)

// Hash160 computes RIPEMD160(SHA256(data)), the address-hashing function
// shared by all three script conventions this package supports.
//
//nolint:gosec // G406: RIPEMD160 usage required by Bitcoin protocol
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sum[:])
	return r.Sum(nil)
}
