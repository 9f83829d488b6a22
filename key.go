package layerkey

import (
	"crypto/subtle"
	"fmt"

	"github.com/awnumar/memguard"
)

// Key is a 32-byte derived key held in locked, read-only memory.
// Call Destroy once the key is no longer needed.
type Key struct {
	buf *memguard.LockedBuffer
}

// NewKeyFromBytes moves b into a Key. The source slice is wiped whether or
// not the call succeeds.
func NewKeyFromBytes(b []byte) (*Key, error) {
	if len(b) != KeySize {
		memguard.WipeBytes(b)
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(b))
	}
	return newKey(b), nil
}

// newKey adopts b, which must be KeySize bytes, and wipes it.
func newKey(b []byte) *Key {
	buf := memguard.NewBufferFromBytes(b)
	buf.Freeze()
	return &Key{buf: buf}
}

// Bytes returns a view of the key. The slice is read-only and becomes
// invalid after Destroy.
func (k *Key) Bytes() []byte {
	if k == nil || k.buf == nil || !k.buf.IsAlive() {
		return nil
	}
	return k.buf.Bytes()
}

// Equal reports whether two keys hold the same bytes, in constant time.
func (k *Key) Equal(other *Key) bool {
	a, b := k.Bytes(), other.Bytes()
	if len(a) != KeySize || len(b) != KeySize {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Destroy wipes and releases the key. It is safe to call more than once.
func (k *Key) Destroy() {
	if k == nil || k.buf == nil {
		return
	}
	k.buf.Destroy()
}

// material returns the key bytes or ErrInvalidKeySize if the key is unusable.
func (k *Key) material() ([]byte, error) {
	b := k.Bytes()
	if len(b) != KeySize {
		return nil, fmt.Errorf("%w: key is nil or destroyed", ErrInvalidKeySize)
	}
	return b, nil
}
