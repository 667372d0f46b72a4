package walletcrypto

import (
	"crypto/rand"
	"io"
)

// Reader is the CSPRNG the engine draws entropy from. It wraps
// crypto/rand.Reader so tests can substitute a deterministic source.
//
//nolint:gochecknoglobals // package-level RNG is required for testability
var Reader io.Reader = rand.Reader

// RandomBytes draws n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SecureRandomBytes draws n random bytes into a SecureBytes container.
func SecureRandomBytes(n int) (*SecureBytes, error) {
	sb, err := NewSecureBytes(n)
	if err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(Reader, sb.Bytes()); err != nil {
		sb.Destroy()
		return nil, err
	}

	return sb, nil
}
