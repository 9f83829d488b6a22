package layerkey

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// wordSeparator joins mnemonic words.
const wordSeparator = '-'

// MaxSymbols is the largest count Words and Chars accept.
const MaxSymbols = 1 << 20

// Generator samples words or characters from a key's keystream without
// modulo bias. The word table is snapshotted at construction; a Generator
// is immutable and safe for concurrent use.
type Generator struct {
	words     []string
	threshold uint32
	longest   int
	opts      options
	tel       *telemetry
}

// NewGenerator creates a Generator. words may be nil when only character
// output is needed; Words then fails with ErrNoWordSource.
func NewGenerator(words WordSource, opts ...Option) (*Generator, error) {
	o := applyOptions(opts)
	tel, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, err
	}
	g := &Generator{opts: o, tel: tel}

	if words != nil {
		table := words.Words()
		if n := words.WordCount(); n != len(table) {
			return nil, fmt.Errorf("%w: WordCount %d does not match %d words", ErrInvalidWordList, n, len(table))
		}
		if len(table) < 1 || len(table) > maxWordSourceSize {
			return nil, fmt.Errorf("%w: size %d outside 1..%d", ErrInvalidWordList, len(table), maxWordSourceSize)
		}
		g.words = slices.Clone(table)
		g.threshold = wordThreshold(len(table))
		for _, w := range table {
			g.longest = max(g.longest, len(w))
		}
	}
	return g, nil
}

// Words draws count words and joins them with single hyphens.
// Draws are little-endian 16-bit values; a draw v is accepted when it is
// below the largest multiple of the table size that fits in 16 bits and
// selects words[v % size].
func (g *Generator) Words(ctx context.Context, key *Key, count int) (secret *Secret, err error) {
	ctx, span := g.tel.tracer.Start(ctx, "layerkey.Words", trace.WithAttributes(attrCount.Int(count)))
	defer endSpan(span, &err)

	if g.words == nil {
		return nil, ErrNoWordSource
	}
	if count < 0 || count > MaxSymbols {
		return nil, fmt.Errorf("%w: %d outside 0..%d", ErrInvalidCount, count, MaxSymbols)
	}
	if count == 0 {
		return &Secret{}, nil
	}
	material, err := key.material()
	if err != nil {
		return nil, err
	}

	stream, err := newKeystream(material)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	// Sized up front so append never reallocates and strands a copy.
	out := make([]byte, 0, count*(g.longest+1))
	defer func() {
		if err != nil {
			memguard.WipeBytes(out[:cap(out)])
		}
	}()

	size := uint32(len(g.words))
	emitted, rejected := 0, 0
	for emitted < count {
		v := uint32(stream.readUint16())
		if v >= g.threshold {
			rejected++
			continue
		}
		w := g.words[v%size]
		if w == "" {
			return nil, fmt.Errorf("%w: empty word at index %d", ErrSymbolAssembly, v%size)
		}
		if emitted > 0 {
			out = append(out, wordSeparator)
		}
		out = append(out, w...)
		emitted++
	}
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: mnemonic is not valid UTF-8", ErrSymbolAssembly)
	}

	span.SetAttributes(attrRejected.Int(rejected))
	g.tel.recordSampling(ctx, kindWords, emitted, rejected)
	g.opts.logger.DebugContext(ctx, "mnemonic generated", "count", count, "rejected", rejected)
	return newSecret(out), nil
}

// Chars draws count characters from Alphabet. A byte b is accepted when it
// is below 256 - 256 % len(Alphabet) and selects Alphabet[b % len(Alphabet)].
func (g *Generator) Chars(ctx context.Context, key *Key, count int) (secret *Secret, err error) {
	ctx, span := g.tel.tracer.Start(ctx, "layerkey.Chars", trace.WithAttributes(attrCount.Int(count)))
	defer endSpan(span, &err)

	if count < 0 || count > MaxSymbols {
		return nil, fmt.Errorf("%w: %d outside 0..%d", ErrInvalidCount, count, MaxSymbols)
	}
	if count == 0 {
		return &Secret{}, nil
	}
	material, err := key.material()
	if err != nil {
		return nil, err
	}

	stream, err := newKeystream(material)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	out := make([]byte, 0, count)
	defer func() {
		if err != nil {
			memguard.WipeBytes(out[:cap(out)])
		}
	}()

	rejected := 0
	for len(out) < count {
		b := stream.readByte()
		if int(b) >= charThreshold {
			rejected++
			continue
		}
		out = append(out, Alphabet[int(b)%len(Alphabet)])
	}
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: password is not valid UTF-8", ErrSymbolAssembly)
	}

	span.SetAttributes(attrRejected.Int(rejected))
	g.tel.recordSampling(ctx, kindChars, len(out), rejected)
	g.opts.logger.DebugContext(ctx, "password generated", "count", count, "rejected", rejected)
	return newSecret(out), nil
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, "generation failed")
	}
	span.End()
}

// GenerateWords derives a hyphen-joined mnemonic of count words from key.
func GenerateWords(key *Key, count int, words WordSource) (*Secret, error) {
	if words == nil {
		return nil, ErrNoWordSource
	}
	g, err := NewGenerator(words)
	if err != nil {
		return nil, err
	}
	return g.Words(context.Background(), key, count)
}

// GenerateChars derives a password of count characters from key.
func GenerateChars(key *Key, count int) (*Secret, error) {
	g, err := NewGenerator(nil)
	if err != nil {
		return nil, err
	}
	return g.Chars(context.Background(), key, count)
}
