// Package wordlist loads diceware word tables in the EFF dice-list format.
//
// Each non-blank line holds a dice index and a word separated by a tab or a
// space:
//
//	11111	abacus
//	11112	abdomen
//
// The raw file is checked against a pinned SHA-256 digest before parsing, so
// a corrupted or substituted list fails at load time instead of silently
// changing every mnemonic derived from it.
//
// EFFLarge returns the EFF large list built in from go-diceware; LoadFile
// reads a list from disk instead:
//
//	words, err := wordlist.LoadFile("eff_large_wordlist.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gen, err := layerkey.NewGenerator(words)
package wordlist

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rbaliyan/layerkey"
)

// EFFLargeSHA256 is the SHA-256 of the EFF large wordlist
// (eff_large_wordlist.txt, 7776 words).
const EFFLargeSHA256 = "addd35536511597a02fa0a9ff1e5284677b8883b83e986e43f15a3db996b903e"

// maxFileSize bounds how much Load reads.
const maxFileSize = 1 << 20

var (
	// ErrChecksumMismatch is returned when the file digest differs from the pin.
	ErrChecksumMismatch = errors.New("wordlist: checksum mismatch")

	// ErrMalformedLine is returned when a line has no index/word separator.
	ErrMalformedLine = errors.New("wordlist: malformed line")

	// ErrTooLarge is returned when the input exceeds 1 MiB.
	ErrTooLarge = errors.New("wordlist: input too large")
)

// Option configures Load and LoadFile.
type Option func(*options)

type options struct {
	checksum string
	size     int
}

// WithChecksum pins a different hex-encoded SHA-256 digest.
func WithChecksum(hexDigest string) Option {
	return func(o *options) {
		o.checksum = strings.ToLower(hexDigest)
	}
}

// WithoutChecksum disables digest verification.
func WithoutChecksum() Option {
	return func(o *options) {
		o.checksum = ""
	}
}

// WithSize expects a table of n words instead of layerkey.WordCount.
func WithSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}

// Parse extracts the words from dice-list formatted input, in order.
// Blank lines are skipped; words are trimmed but otherwise not validated.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		_, word, ok := strings.Cut(text, "\t")
		if !ok {
			_, word, ok = strings.Cut(text, " ")
		}
		if !ok {
			return nil, fmt.Errorf("%w: line %d", ErrMalformedLine, line)
		}
		words = append(words, strings.TrimSpace(word))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("wordlist: read: %w", err)
	}
	return words, nil
}

// Load reads a dice list from r, verifies its digest and returns a
// validated table.
func Load(r io.Reader, opts ...Option) (*layerkey.StaticWordList, error) {
	o := options{checksum: EFFLargeSHA256, size: layerkey.WordCount}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("wordlist: read: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, ErrTooLarge
	}

	if o.checksum != "" {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != o.checksum {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, o.checksum)
		}
	}

	words, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	list, err := layerkey.NewStaticWordList(words, layerkey.WithWordCount(o.size))
	if err != nil {
		return nil, fmt.Errorf("wordlist: %w", err)
	}
	return list, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string, opts ...Option) (*layerkey.StaticWordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist: %w", err)
	}
	defer f.Close()
	return Load(f, opts...)
}
