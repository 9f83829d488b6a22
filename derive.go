package layerkey

import (
	"context"
	"fmt"
	"time"

	"github.com/awnumar/memguard"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/argon2"
)

// EmptyLayerPolicy decides what Derive does with an empty layer list.
type EmptyLayerPolicy uint8

const (
	// EmptyLayersReject fails with ErrInvalidLayers. This is the default.
	EmptyLayersReject EmptyLayerPolicy = iota
	// EmptyLayersDeriveDirect runs a single stage over the master secret,
	// salted with the Blake2b-512 digest of the empty string.
	EmptyLayersDeriveDirect
)

// keyFunc runs one derivation stage and returns a KeySize key.
type keyFunc func(password, salt []byte, p Params) ([]byte, error)

// argon2idKey runs Argon2id v0x13. x/crypto/argon2 reports misuse and
// allocation failures by panicking; those are returned as errors.
func argon2idKey(password, salt []byte, p Params) (key []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = fmt.Errorf("argon2id: %v", r)
		}
	}()
	return argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, uint8(p.Parallelism), KeySize), nil
}

// Deriver chains Argon2id over an ordered list of layers.
// It is immutable and safe for concurrent use.
type Deriver struct {
	params Params
	opts   options
	tel    *telemetry
}

// NewDeriver creates a Deriver for the given parameters.
// Returns an error wrapping ErrInvalidParams if Argon2id would reject them.
func NewDeriver(params Params, opts ...Option) (*Deriver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	tel, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, err
	}
	return &Deriver{params: params, opts: o, tel: tel}, nil
}

// Params returns the parameters applied at every stage.
func (d *Deriver) Params() Params {
	return d.params
}

// Derive returns the final key of the chain
//
//	k1 = Argon2id(master, salt(layers[0]))
//	ki = Argon2id(k(i-1), salt(layers[i-1]))
//
// The caller keeps ownership of master and layers and should wipe them.
// Every salt and intermediate key is wiped before Derive returns, on success
// and on failure. ctx only carries the trace span; derivation is not
// cancellable.
func (d *Deriver) Derive(ctx context.Context, master []byte, layers [][]byte) (key *Key, err error) {
	ctx, span := d.tel.tracer.Start(ctx, "layerkey.Derive", trace.WithAttributes(
		append(paramAttributes(d.params), attrLayers.Int(len(layers)))...))
	start := time.Now()
	defer func() {
		d.tel.recordDerivation(ctx, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "derivation failed")
		}
		span.End()
	}()

	if len(layers) == 0 {
		if d.opts.emptyLayers != EmptyLayersDeriveDirect {
			return nil, ErrInvalidLayers
		}
		layers = [][]byte{nil}
	}

	var stage *memguard.LockedBuffer
	defer func() {
		if stage != nil {
			stage.Destroy()
		}
	}()

	password := master
	for i, layer := range layers {
		next, err := d.stage(password, layer)
		if err != nil {
			return nil, &DerivationError{Layer: i + 1, Err: err}
		}
		if stage != nil {
			stage.Destroy()
		}
		stage = memguard.NewBufferFromBytes(next)
		password = stage.Bytes()

		span.AddEvent("stage", trace.WithAttributes(attrLayer.Int(i+1)))
		d.opts.logger.DebugContext(ctx, "derivation stage complete", "layer", i+1, "layers", len(layers))
	}

	final := make([]byte, KeySize)
	copy(final, stage.Bytes())
	return newKey(final), nil
}

// stage derives one key. The salt and any malformed output are wiped here.
func (d *Deriver) stage(password, layer []byte) ([]byte, error) {
	salt := normalizeSalt(layer)
	defer memguard.WipeBytes(salt)

	out, err := d.opts.kdf(password, salt, d.params)
	if err != nil {
		memguard.WipeBytes(out)
		return nil, err
	}
	if len(out) != KeySize {
		memguard.WipeBytes(out)
		return nil, fmt.Errorf("stage produced %d bytes, want %d", len(out), KeySize)
	}
	return out, nil
}

// Derive runs a hierarchical derivation with default options.
func Derive(master []byte, layers [][]byte, params Params) (*Key, error) {
	d, err := NewDeriver(params)
	if err != nil {
		return nil, err
	}
	return d.Derive(context.Background(), master, layers)
}
