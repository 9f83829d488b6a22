package layerkey

import (
	"fmt"
	"strings"
)

// Preset names a bundle of KDF parameters and default output sizes.
type Preset string

const (
	// PresetStandard selects Standard parameters, 8 words or 20 characters.
	PresetStandard Preset = "standard"
	// PresetParanoid selects Paranoid parameters, 24 words or 48 characters.
	PresetParanoid Preset = "paranoid"
)

// ParsePreset parses a preset name case-insensitively.
func ParsePreset(s string) (Preset, error) {
	switch p := Preset(strings.ToLower(strings.TrimSpace(s))); p {
	case PresetStandard, PresetParanoid:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown preset %q", ErrInvalidParams, s)
	}
}

// Params returns the KDF parameters of the preset.
func (p Preset) Params() Params {
	if p == PresetParanoid {
		return Paranoid
	}
	return Standard
}

// DefaultWords returns the default mnemonic length of the preset.
func (p Preset) DefaultWords() int {
	if p == PresetParanoid {
		return 24
	}
	return 8
}

// DefaultLength returns the default password length of the preset.
func (p Preset) DefaultLength() int {
	if p == PresetParanoid {
		return 48
	}
	return 20
}
