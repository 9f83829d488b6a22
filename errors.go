package layerkey

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLayers is returned when no layers are supplied and the deriver
	// rejects empty layer lists.
	ErrInvalidLayers = errors.New("layerkey: at least one layer is required")

	// ErrInvalidParams is returned when a memory/iteration/parallelism
	// combination cannot be used for Argon2id.
	ErrInvalidParams = errors.New("layerkey: invalid KDF parameters")

	// ErrDerivationFailed is returned when an Argon2id stage fails.
	// The concrete error is a *DerivationError carrying the layer index.
	ErrDerivationFailed = errors.New("layerkey: derivation failed")

	// ErrSymbolAssembly is returned when sampled symbols cannot be assembled
	// into valid text.
	ErrSymbolAssembly = errors.New("layerkey: symbol assembly failed")

	// ErrInvalidKeySize is returned when key material is not 32 bytes.
	ErrInvalidKeySize = errors.New("layerkey: invalid key size, must be 32 bytes")

	// ErrInvalidCount is returned when a symbol count is negative or above
	// MaxSymbols.
	ErrInvalidCount = errors.New("layerkey: invalid symbol count")

	// ErrInvalidWordList is returned when a word list fails validation.
	ErrInvalidWordList = errors.New("layerkey: invalid word list")

	// ErrNoWordSource is returned when words are requested from a generator
	// built without a word source.
	ErrNoWordSource = errors.New("layerkey: no word source configured")
)

// DerivationError reports the 1-based layer index at which derivation failed.
type DerivationError struct {
	Layer int
	Err   error
}

func (e *DerivationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v at layer %d", ErrDerivationFailed, e.Layer)
	}
	return fmt.Sprintf("%v at layer %d: %v", ErrDerivationFailed, e.Layer, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DerivationError) Unwrap() error {
	return e.Err
}

// Is reports ErrDerivationFailed as matching so callers can use errors.Is
// without unpacking the layer index.
func (e *DerivationError) Is(target error) bool {
	return target == ErrDerivationFailed
}

// IsInvalidLayers returns true if the error is or wraps ErrInvalidLayers.
func IsInvalidLayers(err error) bool {
	return errors.Is(err, ErrInvalidLayers)
}

// IsInvalidParams returns true if the error is or wraps ErrInvalidParams.
func IsInvalidParams(err error) bool {
	return errors.Is(err, ErrInvalidParams)
}

// IsDerivationFailed returns true if the error is or wraps ErrDerivationFailed.
func IsDerivationFailed(err error) bool {
	return errors.Is(err, ErrDerivationFailed)
}

// FailedLayer returns the 1-based layer index carried by a DerivationError
// anywhere in err's chain, or 0 if there is none.
func FailedLayer(err error) int {
	var de *DerivationError
	if errors.As(err, &de) {
		return de.Layer
	}
	return 0
}

// IsSymbolAssembly returns true if the error is or wraps ErrSymbolAssembly.
func IsSymbolAssembly(err error) bool {
	return errors.Is(err, ErrSymbolAssembly)
}

// IsInvalidKeySize returns true if the error is or wraps ErrInvalidKeySize.
func IsInvalidKeySize(err error) bool {
	return errors.Is(err, ErrInvalidKeySize)
}

// IsInvalidWordList returns true if the error is or wraps ErrInvalidWordList.
func IsInvalidWordList(err error) bool {
	return errors.Is(err, ErrInvalidWordList)
}

// IsInvalidCount returns true if the error is or wraps ErrInvalidCount.
func IsInvalidCount(err error) bool {
	return errors.Is(err, ErrInvalidCount)
}
