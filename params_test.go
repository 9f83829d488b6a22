package layerkey

import (
	"testing"
)

func TestPresetParams(t *testing.T) {
	if Standard != (Params{MemoryKiB: 65536, Iterations: 16, Parallelism: 6}) {
		t.Errorf("Standard: got %+v", Standard)
	}
	if Paranoid != (Params{MemoryKiB: 131072, Iterations: 32, Parallelism: 6}) {
		t.Errorf("Paranoid: got %+v", Paranoid)
	}
	if Standard.MemoryMiB() != 64 || Paranoid.MemoryMiB() != 128 {
		t.Errorf("MemoryMiB: got %d and %d", Standard.MemoryMiB(), Paranoid.MemoryMiB())
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"standard", Standard, false},
		{"paranoid", Paranoid, false},
		{"minimum", Params{MemoryKiB: 8, Iterations: 1, Parallelism: 1}, false},
		{"max lanes", Params{MemoryKiB: 8 * 255, Iterations: 1, Parallelism: 255}, false},
		{"zero iterations", Params{MemoryKiB: 64, Iterations: 0, Parallelism: 1}, true},
		{"zero lanes", Params{MemoryKiB: 64, Iterations: 1, Parallelism: 0}, true},
		{"too many lanes", Params{MemoryKiB: 1 << 20, Iterations: 1, Parallelism: 256}, true},
		{"memory below lanes", Params{MemoryKiB: 47, Iterations: 1, Parallelism: 6}, true},
		{"zero memory", Params{MemoryKiB: 0, Iterations: 1, Parallelism: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				if !IsInvalidParams(err) {
					t.Errorf("Validate: expected ErrInvalidParams, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestParamsString(t *testing.T) {
	got := Standard.String()
	want := "argon2id(v=19, m=65536 KiB, t=16, p=6)"
	if got != want {
		t.Errorf("String(): got %q, want %q", got, want)
	}
}

func TestCharThreshold(t *testing.T) {
	if len(Alphabet) != 90 {
		t.Fatalf("Alphabet length: got %d, want 90", len(Alphabet))
	}
	if charThreshold != 180 {
		t.Errorf("charThreshold: got %d, want 180", charThreshold)
	}
	for b := 0; b < charThreshold; b++ {
		if idx := b % len(Alphabet); idx < 0 || idx >= len(Alphabet) {
			t.Fatalf("byte %d maps to invalid index %d", b, idx)
		}
	}
	// Every index must be hit exactly twice below the threshold.
	hits := make([]int, len(Alphabet))
	for b := 0; b < charThreshold; b++ {
		hits[b%len(Alphabet)]++
	}
	for i, n := range hits {
		if n != charThreshold/len(Alphabet) {
			t.Errorf("index %d hit %d times", i, n)
		}
	}
}

func TestAlphabetUnique(t *testing.T) {
	seen := make(map[rune]bool)
	for _, c := range Alphabet {
		if c < 0x21 || c > 0x7e {
			t.Errorf("non-printable character %q", c)
		}
		if seen[c] {
			t.Errorf("duplicate character %q", c)
		}
		seen[c] = true
	}
}

func TestWordThreshold(t *testing.T) {
	tests := []struct {
		size int
		want uint32
	}{
		{WordCount, 62208},
		{1, 65536},
		{2, 65536},
		{3, 65535},
		{65536, 65536},
		{40000, 40000},
	}
	for _, tt := range tests {
		if got := wordThreshold(tt.size); got != tt.want {
			t.Errorf("wordThreshold(%d): got %d, want %d", tt.size, got, tt.want)
		}
		if got := wordThreshold(tt.size); got%uint32(tt.size) != 0 || got == 0 {
			t.Errorf("wordThreshold(%d) = %d is not a positive multiple", tt.size, got)
		}
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{"standard", PresetStandard, false},
		{"Paranoid", PresetParanoid, false},
		{" PARANOID ", PresetParanoid, false},
		{"extreme", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePreset(tt.in)
		if tt.wantErr {
			if !IsInvalidParams(err) {
				t.Errorf("ParsePreset(%q): expected ErrInvalidParams, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePreset(%q): got %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestPresetDefaults(t *testing.T) {
	if PresetStandard.Params() != Standard || PresetParanoid.Params() != Paranoid {
		t.Error("Preset.Params does not match the package presets")
	}
	if PresetStandard.DefaultWords() != 8 || PresetStandard.DefaultLength() != 20 {
		t.Errorf("standard defaults: got %d words, %d chars", PresetStandard.DefaultWords(), PresetStandard.DefaultLength())
	}
	if PresetParanoid.DefaultWords() != 24 || PresetParanoid.DefaultLength() != 48 {
		t.Errorf("paranoid defaults: got %d words, %d chars", PresetParanoid.DefaultWords(), PresetParanoid.DefaultLength())
	}
}
