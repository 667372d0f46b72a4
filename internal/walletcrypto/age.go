package walletcrypto

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"filippo.io/age"
)

// scryptWorkFactor controls the scrypt work factor used to wrap the
// password-derived key that protects master entropy at rest.
//
//nolint:gochecknoglobals // package-level atomic for thread-safe configuration
var scryptWorkFactor atomic.Int32

//nolint:gochecknoinits // secure default work factor
func init() {
	scryptWorkFactor.Store(18)
}

// SetScryptWorkFactor sets the scrypt work factor. Range 10 (fast/insecure,
// tests only) to 22 (very secure). Default 18.
func SetScryptWorkFactor(factor int) {
	if factor < 10 {
		factor = 10
	} else if factor > 22 {
		factor = 22
	}
	scryptWorkFactor.Store(int32(factor))
}

// Encrypt encrypts plaintext (typically master entropy) with an
// age scrypt recipient derived from password.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(int(scryptWorkFactor.Load()))

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
//
// SECURITY: the caller must zero the returned slice once done. Prefer
// DecryptSecure, which zeroes the intermediate plaintext automatically.
func Decrypt(ciphertext []byte, password string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(int(scryptWorkFactor.Load()))

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("initializing decryption: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}

	return plaintext, nil
}

// EncryptSecure encrypts the contents of a SecureBytes.
func EncryptSecure(sb *SecureBytes, password string) ([]byte, error) {
	data := sb.Bytes()
	if data == nil {
		return nil, nil
	}
	return Encrypt(data, password)
}

// DecryptSecure decrypts ciphertext into a new SecureBytes, zeroing the
// intermediate plaintext buffer on every path.
func DecryptSecure(ciphertext []byte, password string) (*SecureBytes, error) {
	plaintext, err := Decrypt(ciphertext, password)
	if err != nil {
		return nil, err
	}

	defer func() {
		for i := range plaintext {
			plaintext[i] = 0
		}
	}()

	return SecureBytesFromSlice(plaintext)
}
