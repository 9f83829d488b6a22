package layerkey

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rbaliyan/layerkey"

// Attribute keys. None of them ever carries secret material.
const (
	attrLayers      = attribute.Key("layerkey.layers")
	attrLayer       = attribute.Key("layerkey.layer")
	attrMemoryKiB   = attribute.Key("layerkey.kdf.memory_kib")
	attrIterations  = attribute.Key("layerkey.kdf.iterations")
	attrParallelism = attribute.Key("layerkey.kdf.parallelism")
	attrCount       = attribute.Key("layerkey.count")
	attrRejected    = attribute.Key("layerkey.rejected")
	attrKind        = attribute.Key("kind")
	attrOutcome     = attribute.Key("outcome")
)

const (
	kindWords = "words"
	kindChars = "chars"
)

type telemetry struct {
	tracer         trace.Tracer
	derivations    metric.Int64Counter
	deriveDuration metric.Float64Histogram
	symbols        metric.Int64Counter
	rejections     metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	meter := mp.Meter(instrumentationName)
	t := &telemetry{tracer: tp.Tracer(instrumentationName)}

	var err error
	t.derivations, err = meter.Int64Counter("layerkey.derivations",
		metric.WithDescription("Hierarchical derivations by outcome."),
		metric.WithUnit("{derivation}"))
	if err != nil {
		return nil, fmt.Errorf("layerkey: derivation counter: %w", err)
	}
	t.deriveDuration, err = meter.Float64Histogram("layerkey.derive.duration",
		metric.WithDescription("Wall time of a full derivation chain."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("layerkey: derivation histogram: %w", err)
	}
	t.symbols, err = meter.Int64Counter("layerkey.symbols",
		metric.WithDescription("Symbols emitted by the sampler."),
		metric.WithUnit("{symbol}"))
	if err != nil {
		return nil, fmt.Errorf("layerkey: symbol counter: %w", err)
	}
	t.rejections, err = meter.Int64Counter("layerkey.rejections",
		metric.WithDescription("Draws discarded by rejection sampling."),
		metric.WithUnit("{draw}"))
	if err != nil {
		return nil, fmt.Errorf("layerkey: rejection counter: %w", err)
	}
	return t, nil
}

func paramAttributes(p Params) []attribute.KeyValue {
	return []attribute.KeyValue{
		attrMemoryKiB.Int64(int64(p.MemoryKiB)),
		attrIterations.Int64(int64(p.Iterations)),
		attrParallelism.Int64(int64(p.Parallelism)),
	}
}

func (t *telemetry) recordDerivation(ctx context.Context, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	set := metric.WithAttributes(attrOutcome.String(outcome))
	t.derivations.Add(ctx, 1, set)
	t.deriveDuration.Record(ctx, elapsed.Seconds(), set)
}

func (t *telemetry) recordSampling(ctx context.Context, kind string, emitted, rejected int) {
	set := metric.WithAttributes(attrKind.String(kind))
	t.symbols.Add(ctx, int64(emitted), set)
	t.rejections.Add(ctx, int64(rejected), set)
}
