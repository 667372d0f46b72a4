// Package walletcrypto provides the engine's secrets handling: secure
// in-memory buffers, CSPRNG access, and password-based encryption at rest
// for the master entropy the Store persists.
package walletcrypto

import (
	"runtime"
	"sync"
)

// SecureBytes wraps a sensitive byte slice with mlock'd memory (best effort)
// and explicit zeroing on destroy. Used for entropy and seed material that
// must not linger in memory or get paged to disk.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes allocates a zeroed SecureBytes of the given size, locking
// the backing memory when the OS allows it.
func NewSecureBytes(size int) (*SecureBytes, error) {
	data := make([]byte, size)

	sb := &SecureBytes{data: data}
	sb.locked = mlock(data)

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})

	return sb, nil
}

// SecureBytesFromSlice copies data into a new SecureBytes.
func SecureBytesFromSlice(data []byte) (*SecureBytes, error) {
	sb, err := NewSecureBytes(len(data))
	if err != nil {
		return nil, err
	}
	copy(sb.data, data)
	return sb, nil
}

// Bytes returns the underlying slice. Returns nil once destroyed.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the backing memory is mlock'd.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Len returns the length of the data, 0 once destroyed.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return 0
	}
	return len(s.data)
}

// Destroy zeros and unlocks the memory. Safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	for i := range s.data {
		s.data[i] = 0
	}

	if s.locked {
		munlock(s.data)
		s.locked = false
	}

	s.data = nil
	runtime.SetFinalizer(s, nil)
}
