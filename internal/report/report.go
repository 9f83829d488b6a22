// Package report renders the generated secret together with a summary of
// the settings used and an estimate of its strength.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/rbaliyan/layerkey"
)

// Entropy thresholds in bits.
const (
	ParanoidEntropy = 300.0
	MinSafeEntropy  = 100.0
)

// Input recommendations.
const (
	MinMasterBytes = 16
	MinLayerBytes  = 4
	MinLayers      = 2

	MinSafeWords  = 8
	MinSafeLength = 20
)

// kdfMinimum is the weakest parameter set considered adequate for a tier.
type kdfMinimum struct {
	memoryMiB, iterations, parallelism uint32
}

var (
	standardMinimum = kdfMinimum{memoryMiB: 32, iterations: 8, parallelism: 4}
	paranoidMinimum = kdfMinimum{memoryMiB: 64, iterations: 16, parallelism: 4}
)

// Strength classifies an entropy estimate.
type Strength string

const (
	StrengthParanoid Strength = "Paranoid"
	StrengthStrong   Strength = "Strong"
	StrengthWeak     Strength = "Weak"
)

// Entropy returns count * log2(symbols), the entropy in bits of count
// uniform draws from a set of symbols.
func Entropy(count, symbols int) float64 {
	if count <= 0 || symbols <= 1 {
		return 0
	}
	return float64(count) * math.Log2(float64(symbols))
}

// Classify maps bits of entropy to a Strength.
func Classify(bits float64) Strength {
	switch {
	case bits >= ParanoidEntropy:
		return StrengthParanoid
	case bits >= MinSafeEntropy:
		return StrengthStrong
	default:
		return StrengthWeak
	}
}

// KDFAdequate reports whether p meets the minimum for its tier. Parameter
// sets with at least 64 MiB are held to the paranoid minimum.
func KDFAdequate(p layerkey.Params) bool {
	m := standardMinimum
	if p.MemoryMiB() >= paranoidMinimum.memoryMiB {
		m = paranoidMinimum
	}
	return p.MemoryMiB() >= m.memoryMiB && p.Iterations >= m.iterations && p.Parallelism >= m.parallelism
}

// LayerInfo describes one layer without revealing it.
type LayerInfo struct {
	Index int
	Bytes int
	Chars int
}

// Input describes the collected inputs without revealing them.
type Input struct {
	MasterBytes int
	MasterChars int
	Layers      []LayerInfo
}

// Describe measures master and layers.
func Describe(master []byte, layers [][]byte) Input {
	in := Input{
		MasterBytes: len(master),
		MasterChars: utf8.RuneCount(master),
		Layers:      make([]LayerInfo, len(layers)),
	}
	for i, l := range layers {
		in.Layers[i] = LayerInfo{Index: i + 1, Bytes: len(l), Chars: utf8.RuneCount(l)}
	}
	return in
}

// Output describes what was generated.
type Output struct {
	Mnemonic bool
	Count    int
	Symbols  int
	Wordlist string
	Elapsed  time.Duration
	Params   layerkey.Params
}

// Options controls rendering.
type Options struct {
	Unicode bool
	Color   bool
	Quiet   bool
}

// Printer writes reports to a writer.
type Printer struct {
	w    io.Writer
	opts Options

	ok, warn string
	branch   string
	last     string
	pipe     string
	frames   []string
	tick     time.Duration
	tty      bool

	good, bad lipgloss.Style
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:      w,
		opts:   opts,
		ok:     "+",
		warn:   "!",
		branch: "|-",
		last:   "`-",
		pipe:   "|",
		frames: asciiFrames,
		tick:   spinnerInterval,
		good:   r.NewStyle(),
		bad:    r.NewStyle(),
	}
	if f, ok := w.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	if opts.Unicode {
		p.ok, p.branch, p.last, p.pipe = "✓", "├─", "└─", "│"
		p.frames = unicodeFrames
	}
	if opts.Color {
		p.good = r.NewStyle().Foreground(lipgloss.Color("2"))
		p.bad = r.NewStyle().Foreground(lipgloss.Color("3"))
	}
	return p
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (p *Printer) status(ok bool) (string, lipgloss.Style) {
	if ok {
		return p.ok, p.good
	}
	return p.warn, p.bad
}

func (p *Printer) println(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Print writes the secret and, unless quiet, the settings and statistics.
func (p *Printer) Print(secret []byte, in Input, out Output) {
	p.println("Out[0]:")
	p.w.Write(secret)
	p.println("")
	if p.opts.Quiet {
		return
	}
	p.println("")
	p.settings(in, out)
	p.println("")
	p.stats(len(secret), out)
}

func (p *Printer) settings(in Input, out Output) {
	symbol, style := p.status(KDFAdequate(out.Params))
	p.println("Settings:")
	p.println("  %s KDF        %s Argon2id (m=%s MiB, t=%s, p=%s)", p.branch,
		style.Render("["+symbol+"]"),
		style.Render(fmt.Sprint(out.Params.MemoryMiB())),
		style.Render(fmt.Sprint(out.Params.Iterations)),
		style.Render(fmt.Sprint(out.Params.Parallelism)))

	symbol, style = p.status(in.MasterBytes >= MinMasterBytes)
	p.println("  %s Master     %s %s %s (%s %s)", p.branch,
		style.Render("["+symbol+"]"),
		style.Render(fmt.Sprint(in.MasterBytes)), plural(in.MasterBytes, "byte", "bytes"),
		style.Render(fmt.Sprint(in.MasterChars)), plural(in.MasterChars, "char", "chars"))

	symbol, style = p.status(len(in.Layers) >= MinLayers)
	p.println("  %s Layers     %s %s %s", p.branch,
		style.Render("["+symbol+"]"),
		style.Render(fmt.Sprint(len(in.Layers))), plural(len(in.Layers), "layer", "layers"))

	for i, l := range in.Layers {
		prefix := p.branch
		if i == len(in.Layers)-1 {
			prefix = p.last
		}
		symbol, style = p.status(l.Bytes >= MinLayerBytes)
		p.println("  %s  %s %s In [%d]: %s %s (%s %s)", p.pipe, prefix,
			style.Render("["+symbol+"]"), l.Index,
			style.Render(fmt.Sprint(l.Bytes)), plural(l.Bytes, "byte", "bytes"),
			style.Render(fmt.Sprint(l.Chars)), plural(l.Chars, "char", "chars"))
	}

	p.println("  %s Keystream  ChaCha20 (256-bit)", p.branch)
	p.println("  %s Sampling   Unbiased rejection", p.branch)
	if out.Mnemonic {
		p.println("  %s Output     %d %s", p.last, out.Count, plural(out.Count, "word", "words"))
	} else {
		p.println("  %s Output     %d %s", p.last, out.Count, plural(out.Count, "char", "chars"))
	}
}

func (p *Printer) stats(length int, out Output) {
	bits := Entropy(out.Count, out.Symbols)
	strength := Classify(bits)
	symbol, style := p.status(strength != StrengthWeak)

	lengthOK := out.Count >= MinSafeLength
	if out.Mnemonic {
		lengthOK = out.Count >= MinSafeWords
	}
	lsymbol, lstyle := p.status(lengthOK)

	p.println("Stats:")
	p.println("  %s Entropy    %s %s bits (%s)", p.branch,
		style.Render("["+symbol+"]"),
		style.Render(fmt.Sprintf("%.1f", bits)),
		style.Render(string(strength)))
	p.println("  %s Length     %s %s %s", p.branch,
		lstyle.Render("["+lsymbol+"]"),
		lstyle.Render(fmt.Sprint(length)), plural(length, "char", "chars"))
	if out.Mnemonic {
		p.println("  %s Words      %s %s %s", p.branch,
			lstyle.Render("["+lsymbol+"]"),
			lstyle.Render(fmt.Sprint(out.Count)), plural(out.Count, "word", "words"))
		name := out.Wordlist
		if name == "" {
			name = "Custom"
		}
		p.println("  %s Wordlist   %s (%d words)", p.branch, name, out.Symbols)
	} else {
		p.println("  %s Charset    %d chars", p.branch, out.Symbols)
	}
	p.println("  %s Time       %.1fs", p.last, out.Elapsed.Seconds())
	p.println("")
	p.println("%s Security: %s", style.Render("["+symbol+"]"), style.Render(string(strength)))
}

// Progress animates a spinner next to message while fn runs and returns
// fn's error together with the elapsed time. The spinner is only drawn on a
// terminal and its line is cleared before Progress returns.
func (p *Printer) Progress(message string, fn func() error) (time.Duration, error) {
	if p.tty && !p.opts.Quiet {
		fmt.Fprintln(p.w)
		s := newSpinner(p.w, message, p.frames, p.tick)
		s.start()
		defer s.halt()
	}
	start := time.Now()
	err := fn()
	return time.Since(start), err
}

// DetectColor reports whether w renders ANSI colour. NO_COLOR disables it.
func DetectColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return lipgloss.NewRenderer(w).ColorProfile() != termenv.Ascii
}

// DetectUnicode reports whether the locale advertises UTF-8.
func DetectUnicode() bool {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		v = strings.ToLower(v)
		return strings.Contains(v, "utf-8") || strings.Contains(v, "utf8")
	}
	return false
}
