package guard

import (
	"github.com/awnumar/memguard"

	"github.com/jeremyhahn/go-guard/pkg/otp"
)

// Secret holds decoded key material in locked, guarded memory.
type Secret struct {
	buf *memguard.LockedBuffer
}

// NewSecret decodes a base64 secret into guarded memory. The intermediate
// plaintext is wiped.
func NewSecret(encoded string) (*Secret, error) {
	raw, err := otp.DecodeSecret(encoded)
	if err != nil {
		return nil, err
	}
	return &Secret{buf: memguard.NewBufferFromBytes(raw)}, nil
}

// key returns the raw bytes for keying an HMAC. The slice aliases guarded
// memory and must not be retained or modified.
func (s *Secret) key() ([]byte, error) {
	if s == nil || s.buf == nil || !s.buf.IsAlive() {
		return nil, ErrClosed
	}
	return s.buf.Bytes(), nil
}

// Destroy wipes and releases the secret. It is safe to call more than once.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
}

// String never reveals the secret.
func (s *Secret) String() string {
	return "[REDACTED]"
}

// GoString never reveals the secret.
func (s *Secret) GoString() string {
	return s.String()
}
