// Package input collects the master secret and the ordered layers from a
// terminal or a pipe.
//
// Every value is trimmed and converted to Unicode NFC before use, so the
// same phrase typed on different systems yields the same bytes. Values that
// contain control characters are only accepted after explicit confirmation.
package input

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"
)

// Input limits.
const (
	MaxMasterBytes = 1 << 20
	MaxLayerBytes  = 1 << 20
	MaxLayers      = 100
)

var (
	// ErrAborted is returned when the user declines to continue.
	ErrAborted = errors.New("input: aborted")

	// ErrEmptyMaster is returned when the master secret is empty.
	ErrEmptyMaster = errors.New("input: master secret cannot be empty")

	// ErrNoLayers is returned when no layer was entered.
	ErrNoLayers = errors.New("input: at least one layer is required")

	// ErrTooManyLayers is returned after MaxLayers layers.
	ErrTooManyLayers = errors.New("input: too many layers")

	// ErrTooLong is returned when a value exceeds its byte limit.
	ErrTooLong = errors.New("input: value too long")
)

// Normalize trims surrounding whitespace and converts b to NFC.
// The result never aliases b, so the caller may wipe b afterwards.
func Normalize(b []byte) []byte {
	return norm.NFC.Append(nil, bytes.TrimSpace(b)...)
}

// ControlPositions returns the rune positions of control characters in b.
func ControlPositions(b []byte) []int {
	var pos []int
	i := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if unicode.IsControl(r) {
			pos = append(pos, i)
		}
		b = b[size:]
		i++
	}
	return pos
}

// Collected holds the normalized inputs. Call Wipe when done.
type Collected struct {
	Master []byte
	Layers [][]byte
}

// Wipe zeroes the master secret and every layer.
func (c *Collected) Wipe() {
	if c == nil {
		return
	}
	memguard.WipeBytes(c.Master)
	for _, l := range c.Layers {
		memguard.WipeBytes(l)
	}
}

// Prompter reads values in the order the derivation consumes them:
// the master secret at "In [0]: " and then one layer per "In [n]: " prompt
// until an empty line.
type Prompter struct {
	in         *bufio.Reader
	out        io.Writer
	errOut     io.Writer
	readSecret func() ([]byte, error)
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithSecretReader replaces the hidden master-secret reader.
func WithSecretReader(fn func() ([]byte, error)) Option {
	return func(p *Prompter) {
		if fn != nil {
			p.readSecret = fn
		}
	}
}

// NewPrompter creates a Prompter. Prompts are written to out and warnings to
// errOut. When in is a terminal the master secret is read without echo.
func NewPrompter(in io.Reader, out, errOut io.Writer, opts ...Option) *Prompter {
	p := &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
	p.readSecret = p.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() ([]byte, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.out)
			return b, err
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// readLine returns the next line without its terminator. io.EOF is only
// returned when nothing was read.
func (p *Prompter) readLine() ([]byte, error) {
	line, err := p.in.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		memguard.WipeBytes(line)
		return nil, err
	}
	return line, nil
}

// Collect reads the master secret and then the layers.
func (p *Prompter) Collect() (*Collected, error) {
	master, err := p.Master()
	if err != nil {
		return nil, err
	}
	layers, err := p.Layers()
	if err != nil {
		memguard.WipeBytes(master)
		return nil, err
	}
	return &Collected{Master: master, Layers: layers}, nil
}

// Master prompts for the master secret.
func (p *Prompter) Master() ([]byte, error) {
	fmt.Fprint(p.out, "In [0]: ")
	raw, err := p.readSecret()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyMaster
		}
		return nil, fmt.Errorf("input: read master secret: %w", err)
	}
	master := Normalize(raw)
	memguard.WipeBytes(raw)

	if len(master) == 0 {
		return nil, ErrEmptyMaster
	}
	if len(master) > MaxMasterBytes {
		memguard.WipeBytes(master)
		return nil, fmt.Errorf("%w: master secret is %d bytes, maximum is %d", ErrTooLong, len(master), MaxMasterBytes)
	}
	if err := p.confirmControl("Master secret", master); err != nil {
		memguard.WipeBytes(master)
		return nil, err
	}
	return master, nil
}

// Layers prompts for layers until an empty line or end of input.
func (p *Prompter) Layers() ([][]byte, error) {
	var layers [][]byte
	fail := func(err error) ([][]byte, error) {
		for _, l := range layers {
			memguard.WipeBytes(l)
		}
		return nil, err
	}

	for index := 1; ; index++ {
		if index > MaxLayers {
			return fail(fmt.Errorf("%w: %d maximum allowed", ErrTooManyLayers, MaxLayers))
		}
		fmt.Fprintf(p.out, "In [%d]: ", index)

		raw, err := p.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(fmt.Errorf("input: read layer %d: %w", index, err))
		}
		layer := Normalize(raw)
		memguard.WipeBytes(raw)
		if len(layer) == 0 {
			break
		}
		if len(layer) > MaxLayerBytes {
			memguard.WipeBytes(layer)
			return fail(fmt.Errorf("%w: layer %d is %d bytes, maximum is %d", ErrTooLong, index, len(layer), MaxLayerBytes))
		}
		if err := p.confirmControl("Layer "+strconv.Itoa(index), layer); err != nil {
			memguard.WipeBytes(layer)
			return fail(err)
		}
		layers = append(layers, layer)
	}

	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	return layers, nil
}

// confirmControl warns about control characters in value and asks whether
// to continue. Anything but "y" or "yes" aborts.
func (p *Prompter) confirmControl(name string, value []byte) error {
	pos := ControlPositions(value)
	if len(pos) == 0 {
		return nil
	}
	list := make([]string, len(pos))
	for i, n := range pos {
		list[i] = strconv.Itoa(n)
	}
	fmt.Fprintf(p.errOut, "WARNING: %s contains %d control character(s) at position(s): %s\n",
		name, len(pos), strings.Join(list, ", "))
	fmt.Fprint(p.errOut, "Continue anyway? [y/N]: ")

	answer, err := p.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("input: read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(string(answer))) {
	case "y", "yes":
		return nil
	}
	return ErrAborted
}
