package layerkey

import "github.com/awnumar/memguard"

// Secret is generated output held in locked memory. The zero value is an
// empty secret.
type Secret struct {
	buf *memguard.LockedBuffer
}

// newSecret moves b into a Secret and wipes b.
func newSecret(b []byte) *Secret {
	if len(b) == 0 {
		return &Secret{}
	}
	buf := memguard.NewBufferFromBytes(b)
	buf.Freeze()
	return &Secret{buf: buf}
}

// Bytes returns a read-only view of the secret, valid until Destroy.
func (s *Secret) Bytes() []byte {
	if s == nil || s.buf == nil || !s.buf.IsAlive() {
		return nil
	}
	return s.buf.Bytes()
}

// String returns a copy of the secret. The copy lives on the Go heap and
// cannot be wiped; prefer Bytes where possible.
func (s *Secret) String() string {
	return string(s.Bytes())
}

// Len returns the length of the secret in bytes.
func (s *Secret) Len() int {
	return len(s.Bytes())
}

// Destroy wipes and releases the secret. It is safe to call more than once.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
}
