package layerkey

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Deriver or a Generator.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	emptyLayers    EmptyLayerPolicy
	kdf            keyFunc
}

func defaultOptions() options {
	return options{
		logger:         slog.New(slog.DiscardHandler),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		emptyLayers:    EmptyLayersReject,
		kdf:            argon2idKey,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for debug records. Secret material is never
// logged. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithEmptyLayers sets how a Deriver treats an empty layer list.
// It has no effect on a Generator.
func WithEmptyLayers(policy EmptyLayerPolicy) Option {
	return func(o *options) {
		o.emptyLayers = policy
	}
}

// withKeyFunc replaces the Argon2id stage function. Used by tests.
func withKeyFunc(fn keyFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.kdf = fn
		}
	}
}
