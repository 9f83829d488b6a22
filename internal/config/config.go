// Package config holds the command-line settings for layerkey and loads
// them from an optional settings file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbaliyan/config/codec"
	jsoncodec "github.com/rbaliyan/config/codec/json"
	yamlcodec "github.com/rbaliyan/config/codec/yaml"

	"github.com/rbaliyan/layerkey"
)

// Output modes.
const (
	ModeMnemonic = "mnemonic"
	ModePassword = "password"
)

// EnvWordlist names the environment variable holding the wordlist path.
const EnvWordlist = "LAYERKEY_WORDLIST"

// Upper bounds on requested output and KDF overrides.
const (
	MaxWords          = 1024
	MaxLength         = 4096
	MaxKDFMemoryMiB   = 4096
	MaxKDFIterations  = 1 << 10
	maxSettingsFileSz = 64 << 10
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("config: invalid settings")

// Settings is the merged result of the settings file and command-line flags.
// Zero numeric fields mean "use the preset default".
type Settings struct {
	Mode           string `json:"mode" yaml:"mode"`
	Security       string `json:"security" yaml:"security"`
	Words          int    `json:"words,omitempty" yaml:"words,omitempty"`
	Length         int    `json:"length,omitempty" yaml:"length,omitempty"`
	KDFMemoryMiB   uint32 `json:"kdf_memory_mib,omitempty" yaml:"kdf_memory_mib,omitempty"`
	KDFIterations  uint32 `json:"kdf_iterations,omitempty" yaml:"kdf_iterations,omitempty"`
	KDFParallelism uint32 `json:"kdf_parallelism,omitempty" yaml:"kdf_parallelism,omitempty"`
	Wordlist       string `json:"wordlist,omitempty" yaml:"wordlist,omitempty"`
	CustomWordlist bool   `json:"custom_wordlist,omitempty" yaml:"custom_wordlist,omitempty"`
	NoUnicode      bool   `json:"no_unicode,omitempty" yaml:"no_unicode,omitempty"`
	NoColor        bool   `json:"no_color,omitempty" yaml:"no_color,omitempty"`
	Quiet          bool   `json:"quiet,omitempty" yaml:"quiet,omitempty"`
	Verbose        bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Default returns the settings used when neither a file nor flags say
// otherwise.
func Default() Settings {
	return Settings{
		Mode:     ModeMnemonic,
		Security: string(layerkey.PresetStandard),
	}
}

// codecFor picks the decoder for the file's extension. Files without an
// extension are read as JSON; other extensions fall back to the codec
// registry.
func codecFor(path string) (codec.Codec, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "", "json":
		return jsoncodec.New(), nil
	case "yaml", "yml":
		return yamlcodec.New(), nil
	}
	c := codec.Get(ext)
	if c == nil {
		return nil, fmt.Errorf("%w: unsupported settings format %q", ErrInvalidSettings, ext)
	}
	return c, nil
}

// Load reads settings from path on top of Default. The result is validated.
func Load(ctx context.Context, path string) (Settings, error) {
	s := Default()

	c, err := codecFor(path)
	if err != nil {
		return s, err
	}

	f, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSettingsFileSz+1))
	if err != nil {
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(data) > maxSettingsFileSz {
		return s, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidSettings, path, maxSettingsFileSz)
	}
	if err := c.Decode(ctx, data, &s); err != nil {
		return s, fmt.Errorf("%w: decode %s: %v", ErrInvalidSettings, path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks every field and reports the first problem found.
func (s Settings) Validate() error {
	switch s.Mode {
	case ModeMnemonic, ModePassword:
	default:
		return fmt.Errorf("%w: mode must be %s or %s (got %q)", ErrInvalidSettings, ModeMnemonic, ModePassword, s.Mode)
	}
	if _, err := layerkey.ParsePreset(s.Security); err != nil {
		return fmt.Errorf("%w: security: %v", ErrInvalidSettings, err)
	}
	if s.Words < 0 || s.Words > MaxWords {
		return fmt.Errorf("%w: words must be at most %d (got %d)", ErrInvalidSettings, MaxWords, s.Words)
	}
	if s.Length < 0 || s.Length > MaxLength {
		return fmt.Errorf("%w: length must be at most %d (got %d)", ErrInvalidSettings, MaxLength, s.Length)
	}
	if s.KDFMemoryMiB > MaxKDFMemoryMiB {
		return fmt.Errorf("%w: kdf memory must be at most %d MiB (got %d)", ErrInvalidSettings, MaxKDFMemoryMiB, s.KDFMemoryMiB)
	}
	if s.KDFIterations > MaxKDFIterations {
		return fmt.Errorf("%w: kdf iterations must be at most %d (got %d)", ErrInvalidSettings, MaxKDFIterations, s.KDFIterations)
	}
	if s.Quiet && s.Verbose {
		return fmt.Errorf("%w: quiet and verbose cannot be used together", ErrInvalidSettings)
	}
	if _, err := s.Params(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Preset returns the parsed security preset, falling back to standard.
func (s Settings) Preset() layerkey.Preset {
	p, err := layerkey.ParsePreset(s.Security)
	if err != nil {
		return layerkey.PresetStandard
	}
	return p
}

// Params returns the preset parameters with any KDF overrides applied.
func (s Settings) Params() (layerkey.Params, error) {
	p := s.Preset().Params()
	if s.KDFMemoryMiB != 0 {
		p.MemoryKiB = s.KDFMemoryMiB * 1024
	}
	if s.KDFIterations != 0 {
		p.Iterations = s.KDFIterations
	}
	if s.KDFParallelism != 0 {
		p.Parallelism = s.KDFParallelism
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Count returns the number of symbols to generate for the selected mode.
func (s Settings) Count() int {
	preset := s.Preset()
	if s.Mode == ModePassword {
		if s.Length > 0 {
			return s.Length
		}
		return preset.DefaultLength()
	}
	if s.Words > 0 {
		return s.Words
	}
	return preset.DefaultWords()
}

// WordlistPath returns the configured wordlist path, consulting
// LAYERKEY_WORDLIST when the settings leave it empty.
func (s Settings) WordlistPath() string {
	if s.Wordlist != "" {
		return s.Wordlist
	}
	return os.Getenv(EnvWordlist)
}
