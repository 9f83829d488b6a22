package layerkey

import "fmt"

// Derivation and sampling constants.
const (
	// KeySize is the length in bytes of every derived key.
	KeySize = 32

	// MinSaltSize is the shortest layer used verbatim as an Argon2id salt.
	// Shorter layers are replaced by their Blake2b-512 digest.
	MinSaltSize = 16

	// WordCount is the size of the canonical diceware word table.
	WordCount = 7776

	// Alphabet is the character set used for password output.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()_+-=[]{}|;:,.<>?/~"

	// argon2Version is the only Argon2 version produced by x/crypto/argon2.
	argon2Version = 0x13

	// minMemoryPerLane is the Argon2 lower bound of 8 KiB per lane.
	minMemoryPerLane = 8

	// maxParallelism is bounded by the uint8 lane count of x/crypto/argon2.
	maxParallelism = 255

	// streamChunkSize is the size of the keystream working buffer.
	streamChunkSize = 1024

	// maxWordSourceSize is the largest table addressable by 16-bit draws.
	maxWordSourceSize = 1 << 16
)

// charThreshold is the exclusive upper bound on accepted bytes for Alphabet.
const charThreshold = 256 - 256%len(Alphabet)

// Params are the Argon2id cost parameters applied at every derivation stage.
type Params struct {
	// MemoryKiB is the memory cost in KiB.
	MemoryKiB uint32
	// Iterations is the number of passes over memory.
	Iterations uint32
	// Parallelism is the number of lanes.
	Parallelism uint32
}

var (
	// Standard is the default cost preset: 64 MiB, 16 passes, 6 lanes.
	Standard = Params{MemoryKiB: 64 * 1024, Iterations: 16, Parallelism: 6}

	// Paranoid doubles memory and passes: 128 MiB, 32 passes, 6 lanes.
	Paranoid = Params{MemoryKiB: 128 * 1024, Iterations: 32, Parallelism: 6}
)

// MemoryMiB returns the memory cost rounded down to whole MiB.
func (p Params) MemoryMiB() uint32 {
	return p.MemoryKiB / 1024
}

// Validate reports whether Argon2id accepts the parameter combination.
func (p Params) Validate() error {
	switch {
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1", ErrInvalidParams)
	case p.Parallelism < 1:
		return fmt.Errorf("%w: parallelism must be at least 1", ErrInvalidParams)
	case p.Parallelism > maxParallelism:
		return fmt.Errorf("%w: parallelism %d exceeds %d", ErrInvalidParams, p.Parallelism, maxParallelism)
	case uint64(p.MemoryKiB) < uint64(minMemoryPerLane)*uint64(p.Parallelism):
		return fmt.Errorf("%w: memory %d KiB below %d KiB for %d lanes",
			ErrInvalidParams, p.MemoryKiB, minMemoryPerLane*p.Parallelism, p.Parallelism)
	}
	return nil
}

// String renders the parameters without any secret material.
func (p Params) String() string {
	return fmt.Sprintf("argon2id(v=%d, m=%d KiB, t=%d, p=%d)", argon2Version, p.MemoryKiB, p.Iterations, p.Parallelism)
}

// wordThreshold is the exclusive upper bound on accepted 16-bit draws for a
// table of size n: the largest multiple of n not exceeding 65536.
func wordThreshold(n int) uint32 {
	return uint32(maxWordSourceSize/n) * uint32(n)
}
