package layerkey

import (
	"fmt"
	"slices"
)

// Word shape accepted by StaticWordList.
const (
	minWordLen = 3
	maxWordLen = 9
)

// StaticWordList is a validated, immutable WordSource backed by memory.
// It is safe for concurrent use.
type StaticWordList struct {
	words []string
}

// WordListOption configures a StaticWordList.
type WordListOption func(*wordListConfig)

type wordListConfig struct {
	size int
}

// WithWordCount changes the required table size from WordCount.
// The size must be between 1 and 65536.
func WithWordCount(n int) WordListOption {
	return func(c *wordListConfig) {
		c.size = n
	}
}

// NewStaticWordList validates words and returns an immutable table.
// The table must contain exactly WordCount unique entries, each 3 to 9
// characters drawn from lowercase ASCII letters and '-'.
// The slice is copied; later changes by the caller have no effect.
func NewStaticWordList(words []string, opts ...WordListOption) (*StaticWordList, error) {
	cfg := wordListConfig{size: WordCount}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.size < 1 || cfg.size > maxWordSourceSize {
		return nil, fmt.Errorf("%w: size %d outside 1..%d", ErrInvalidWordList, cfg.size, maxWordSourceSize)
	}
	if len(words) != cfg.size {
		return nil, fmt.Errorf("%w: got %d words, want %d", ErrInvalidWordList, len(words), cfg.size)
	}

	seen := make(map[string]int, len(words))
	for i, w := range words {
		if err := validateWord(w); err != nil {
			return nil, fmt.Errorf("%w: word %d %q: %v", ErrInvalidWordList, i, w, err)
		}
		if j, dup := seen[w]; dup {
			return nil, fmt.Errorf("%w: word %d %q duplicates word %d", ErrInvalidWordList, i, w, j)
		}
		seen[w] = i
	}

	return &StaticWordList{words: slices.Clone(words)}, nil
}

func validateWord(w string) error {
	if w == "" {
		return fmt.Errorf("empty")
	}
	if len(w) < minWordLen || len(w) > maxWordLen {
		return fmt.Errorf("length %d outside %d..%d", len(w), minWordLen, maxWordLen)
	}
	for i := 0; i < len(w); i++ {
		c := w[i]
		if (c < 'a' || c > 'z') && c != '-' {
			return fmt.Errorf("invalid character %q at %d", c, i)
		}
	}
	return nil
}

// Words returns a copy of the table.
func (l *StaticWordList) Words() []string {
	return slices.Clone(l.words)
}

// WordCount returns the number of words.
func (l *StaticWordList) WordCount() int {
	return len(l.words)
}

// Word returns the word at index i.
func (l *StaticWordList) Word(i int) string {
	return l.words[i]
}

// Compile-time interface check.
var _ WordSource = (*StaticWordList)(nil)
