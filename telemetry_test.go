package layerkey

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestProviders() (*tracetest.SpanRecorder, *sdktrace.TracerProvider, *sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return sr, tp, reader, mp
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	sums := make(map[string]map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			byAttr := make(map[string]int64)
			for _, dp := range data.DataPoints {
				byAttr[dp.Attributes.Encoded(attribute.DefaultEncoder())] += dp.Value
			}
			sums[m.Name] = byAttr
		}
	}
	return sums
}

func TestDeriveSpan(t *testing.T) {
	sr, tp, _, mp := newTestProviders()
	d, err := NewDeriver(smallParams, WithTracerProvider(tp), WithMeterProvider(mp))
	if err != nil {
		t.Fatal(err)
	}
	key, err := d.Derive(context.Background(), []byte("life"), layersOf("out", "of", "balance"))
	if err != nil {
		t.Fatal(err)
	}
	key.Destroy()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "layerkey.Derive" {
		t.Errorf("span name: got %q", span.Name())
	}
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[attrLayers].AsInt64() != 3 {
		t.Errorf("layers attribute: got %v", attrs[attrLayers])
	}
	if attrs[attrMemoryKiB].AsInt64() != 64 || attrs[attrIterations].AsInt64() != 2 || attrs[attrParallelism].AsInt64() != 2 {
		t.Errorf("param attributes: got %v", span.Attributes())
	}
	if n := len(span.Events()); n != 3 {
		t.Errorf("got %d stage events, want 3", n)
	}
	for _, kv := range span.Attributes() {
		if strings.Contains(kv.Value.Emit(), "life") || strings.Contains(kv.Value.Emit(), "balance") {
			t.Errorf("attribute %s leaks input material", kv.Key)
		}
	}
}

func TestDeriveSpanError(t *testing.T) {
	sr, tp, reader, mp := newTestProviders()
	d, err := NewDeriver(smallParams, WithTracerProvider(tp), WithMeterProvider(mp))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Derive(context.Background(), []byte("life"), nil); err == nil {
		t.Fatal("expected error")
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status: got %v", spans[0].Status())
	}

	sums := collectSums(t, reader)
	if got := sums["layerkey.derivations"]["outcome=error"]; got != 1 {
		t.Errorf("error derivations: got %d, want 1 (%v)", got, sums)
	}
}

func TestDeriveMetrics(t *testing.T) {
	_, tp, reader, mp := newTestProviders()
	d, err := NewDeriver(smallParams, WithTracerProvider(tp), WithMeterProvider(mp))
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		key, err := d.Derive(context.Background(), []byte("life"), layersOf("out"))
		if err != nil {
			t.Fatal(err)
		}
		key.Destroy()
	}

	sums := collectSums(t, reader)
	if got := sums["layerkey.derivations"]["outcome=ok"]; got != 2 {
		t.Errorf("ok derivations: got %d, want 2", got)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "layerkey.derive.duration" {
				continue
			}
			found = true
			h, ok := m.Data.(metricdata.Histogram[float64])
			if !ok || len(h.DataPoints) != 1 || h.DataPoints[0].Count != 2 {
				t.Errorf("duration histogram: got %+v", m.Data)
			}
		}
	}
	if !found {
		t.Error("duration histogram not recorded")
	}
}

func TestSamplingMetrics(t *testing.T) {
	sr, tp, reader, mp := newTestProviders()
	g, err := NewGenerator(nil, WithTracerProvider(tp), WithMeterProvider(mp))
	if err != nil {
		t.Fatal(err)
	}
	pw, err := g.Chars(context.Background(), fixedKey(t, 42), 20)
	if err != nil {
		t.Fatal(err)
	}
	pw.Destroy()

	sums := collectSums(t, reader)
	if got := sums["layerkey.symbols"]["kind=chars"]; got != 20 {
		t.Errorf("symbols: got %d, want 20", got)
	}
	if got := sums["layerkey.rejections"]["kind=chars"]; got != 2 {
		t.Errorf("rejections: got %d, want 2", got)
	}

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != "layerkey.Chars" {
		t.Fatalf("unexpected spans: %v", spans)
	}
	var rejected int64 = -1
	for _, kv := range spans[0].Attributes() {
		if kv.Key == attrRejected {
			rejected = kv.Value.AsInt64()
		}
	}
	if rejected != 2 {
		t.Errorf("rejected attribute: got %d, want 2", rejected)
	}
}

func TestWordsSpanNoSource(t *testing.T) {
	sr, tp, _, mp := newTestProviders()
	g, err := NewGenerator(nil, WithTracerProvider(tp), WithMeterProvider(mp))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Words(context.Background(), fixedKey(t, 1), 3); err == nil {
		t.Fatal("expected error")
	}
	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Errorf("expected one errored span, got %v", spans)
	}
}
