package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastKDF keeps command tests quick; the expected outputs below were
// computed independently for these parameters.
var fastKDF = []string{"--kdf-memory", "1", "--kdf-iterations", "1", "--kdf-parallelism", "1"}

const lifeInput = "life\nout\nof\nbalance\n\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	code := ExitSuccess
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		code = HandleError(cmd, err)
	}
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// writeDiceList writes n synthetic words (aaa, aab, ...) in dice-list format.
func writeDiceList(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "%05d\t%c%c%c\n", i, 'a'+i/676, 'a'+(i/26)%26, 'a'+i%26)
	}
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestPasswordQuiet(t *testing.T) {
	args := append([]string{"--mode", "password", "--quiet"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Equal(t, "In [0]: In [1]: In [2]: In [3]: In [4]: Out[0]:\n|8-u=+mcwWw#{ylbd|+,\n", r.stdout)
	assert.Empty(t, r.stderr)
}

func TestPasswordLength(t *testing.T) {
	args := append([]string{"-m", "password", "-q", "--length", "12"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\n|8-u=+mcwWw#\n")
}

func TestPasswordReport(t *testing.T) {
	args := append([]string{"--mode", "password", "--no-unicode", "--no-color"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\n|8-u=+mcwWw#{ylbd|+,\n\nSettings:\n")
	assert.Contains(t, r.stdout, "  |- KDF        [!] Argon2id (m=1 MiB, t=1, p=1)")
	assert.Contains(t, r.stdout, "  |- Layers     [+] 3 layers")
	assert.Contains(t, r.stdout, "  |- Entropy    [+] 129.8 bits (Strong)")
	assert.Contains(t, r.stdout, "[+] Security: Strong")
}

func TestMnemonicCustomWordlist(t *testing.T) {
	list := writeDiceList(t, 7776)
	args := append([]string{"--wordlist", list, "--custom-wordlist", "--words", "3", "-q"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\nesg-fgg-beu\n")
}

func TestMnemonicWordlistFromEnv(t *testing.T) {
	t.Setenv("LAYERKEY_WORDLIST", writeDiceList(t, 7776))
	args := append([]string{"--custom-wordlist", "-q"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\nesg-fgg-beu-lim-bdt-emx-kuq-icw\n")
}

func TestMnemonicChecksumMismatch(t *testing.T) {
	args := append([]string{"--wordlist", writeDiceList(t, 7776)}, fastKDF...)
	r := execute(t, lifeInput, args...)

	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "checksum mismatch")
	// The wordlist is checked before any secret is requested.
	assert.NotContains(t, r.stdout, "In [0]")
}

func TestMnemonicBuiltinWordlist(t *testing.T) {
	t.Setenv("LAYERKEY_WORDLIST", "")
	r := execute(t, lifeInput, append([]string{"-q"}, fastKDF...)...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\nhaste-kebab-camera-wimp-cable-grudge-unsorted-riverside\n")
}

func TestMnemonicBuiltinReport(t *testing.T) {
	t.Setenv("LAYERKEY_WORDLIST", "")
	args := append([]string{"--words", "3", "--no-unicode", "--no-color"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\nhaste-kebab-camera\n")
	assert.Contains(t, r.stdout, "Wordlist   EFF Large (7776 words)")
}

func TestSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layerkey.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"mode": "password",
		"length": 40,
		"kdf_memory_mib": 1,
		"kdf_iterations": 1,
		"kdf_parallelism": 1,
		"quiet": true
	}`), 0o600))

	// Flags override the file.
	r := execute(t, lifeInput, "--config", path, "--length", "20")
	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\n|8-u=+mcwWw#{ylbd|+,\n")
}

func TestSettingsFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layerkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"mode: password\nlength: 12\nkdf_memory_mib: 1\nkdf_iterations: 1\nkdf_parallelism: 1\nquiet: true\n"), 0o600))

	r := execute(t, lifeInput, "--config", path)
	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Out[0]:\n|8-u=+mcwWw#\n")
}

func TestSettingsFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layerkey.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode": "pin"}`), 0o600))

	r := execute(t, lifeInput, "--config", path)
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "cannot load settings")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown mode", []string{"--mode", "pin"}},
		{"unknown preset", []string{"--security", "extreme"}},
		{"unknown flag", []string{"--colour"}},
		{"positional argument", []string{"secret"}},
		{"bad parallelism", []string{"--kdf-parallelism", "300"}},
		{"quiet and verbose", []string{"-q", "-v"}},
		{"negative words", []string{"--words", "-4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, lifeInput, tt.args...)
			assert.Equal(t, ExitUsage, r.code, r.stderr)
			assert.Contains(t, r.stderr, "Error:")
		})
	}
}

func TestAborted(t *testing.T) {
	args := append([]string{"--mode", "password"}, fastKDF...)
	r := execute(t, "life\nou\x01t\nn\n", args...)

	assert.Equal(t, ExitAborted, r.code)
	assert.Contains(t, r.stderr, "Layer 1 contains 1 control character(s)")
	assert.Contains(t, r.stderr, "Aborted.")
	assert.NotContains(t, r.stdout, "Out[0]")
}

func TestEmptyInput(t *testing.T) {
	args := append([]string{"--mode", "password"}, fastKDF...)

	r := execute(t, "", args...)
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "master secret cannot be empty")

	r = execute(t, "life\n\n", args...)
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "at least one layer is required")
}

func TestVerboseLogsStages(t *testing.T) {
	args := append([]string{"--mode", "password", "--verbose"}, fastKDF...)
	r := execute(t, lifeInput, args...)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stderr, "derivation stage complete")
	assert.NotContains(t, r.stderr, "life")
	assert.NotContains(t, r.stderr, "balance")
	assert.NotContains(t, r.stderr, "|8-u=+mcwWw#")
}

func TestVersion(t *testing.T) {
	r := execute(t, "", "--version")
	assert.Equal(t, ExitSuccess, r.code)
	assert.Contains(t, r.stdout, "layerkey version dev")
}
