package layerkey

import (
	"github.com/awnumar/memguard"
	"golang.org/x/crypto/blake2b"
)

// normalizeSalt turns a layer into an Argon2id salt. Layers of at least
// MinSaltSize bytes are copied unchanged; shorter ones are replaced by their
// 64-byte Blake2b-512 digest. The result is always a fresh slice owned by
// the caller, who must wipe it.
func normalizeSalt(layer []byte) []byte {
	if len(layer) >= MinSaltSize {
		salt := make([]byte, len(layer))
		copy(salt, layer)
		return salt
	}

	sum := blake2b.Sum512(layer)
	salt := make([]byte, blake2b.Size)
	copy(salt, sum[:])
	memguard.WipeBytes(sum[:])
	return salt
}
