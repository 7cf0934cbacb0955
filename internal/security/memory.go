package security

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// SecureBytes holds a copy of secret material that is wiped on Destroy.
type SecureBytes struct {
	data []byte
	mu   sync.Mutex
}

// NewSecureBytes copies s into a buffer owned by the returned value.
func NewSecureBytes(s string) *SecureBytes {
	return NewSecureBytesFromSlice([]byte(s))
}

// NewSecureBytesFromSlice copies data into a buffer owned by the returned value.
func NewSecureBytesFromSlice(data []byte) *SecureBytes {
	secure := &SecureBytes{
		data: make([]byte, len(data)),
	}
	copy(secure.data, data)
	return secure
}

// Bytes returns the underlying buffer. It is nil after Destroy.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Destroy zeroes the buffer and drops it.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		ZeroBytes(s.data)
		s.data = nil
	}
}

// ZeroBytes overwrites data with zeros.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	clear(data)
	runtime.KeepAlive(data)
}

// SecureCompare reports whether a and b are equal in time that depends only
// on their lengths.
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// SecureCompareString is SecureCompare for strings.
func SecureCompareString(a, b string) bool {
	return SecureCompare([]byte(a), []byte(b))
}
