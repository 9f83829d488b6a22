package layerkey

import (
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/chacha20"
)

// keystream expands a key into a deterministic byte stream using ChaCha20
// with an all-zero 96-bit nonce. Each derived key drives exactly one stream
// per generation call, so the fixed nonce is never shared between unrelated
// messages. The stream only moves forward; the same key always yields the
// same sequence.
type keystream struct {
	cipher *chacha20.Cipher
	buf    *memguard.LockedBuffer
	pos    int
}

func newKeystream(key []byte) (*keystream, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce[:])
	if err != nil {
		return nil, fmt.Errorf("layerkey: keystream cipher: %w", err)
	}
	s := &keystream{cipher: c, buf: memguard.NewBuffer(streamChunkSize)}
	s.refill()
	return s, nil
}

// refill overwrites the working buffer with the next chunk of keystream.
func (s *keystream) refill() {
	b := s.buf.Bytes()
	clear(b)
	s.cipher.XORKeyStream(b, b)
	s.pos = 0
}

func (s *keystream) readByte() byte {
	b := s.buf.Bytes()
	if s.pos >= len(b) {
		s.refill()
	}
	v := b[s.pos]
	s.pos++
	return v
}

// readUint16 reads the next two bytes as a little-endian value.
func (s *keystream) readUint16() uint16 {
	lo := s.readByte()
	hi := s.readByte()
	return uint16(lo) | uint16(hi)<<8
}

// Read fills p with the next len(p) bytes of keystream. It never fails.
func (s *keystream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = s.readByte()
	}
	return len(p), nil
}

// Close wipes and releases the working buffer.
func (s *keystream) Close() error {
	s.buf.Destroy()
	s.pos = 0
	return nil
}
