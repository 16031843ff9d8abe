/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Calls provides OpenTelemetry instruments for structured calls: a call
// counter, a latency histogram and token counters. Instruments that fail
// to initialize degrade to no-ops.
type Calls struct {
	calls        metric.Int64Counter
	duration     metric.Float64Histogram
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
}

// NewCalls creates the instruments on the global meter provider under
// meterName. The call or function name is a dimension on every recording.
func NewCalls(meterName string) *Calls {
	return NewCallsWithProvider(otel.GetMeterProvider(), meterName)
}

// NewCallsWithProvider is NewCalls against an explicit provider.
func NewCallsWithProvider(mp metric.MeterProvider, meterName string) *Calls {
	meter := mp.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	calls, err := meter.Int64Counter("opper.calls",
		metric.WithDescription("The number of structured calls made"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create call counter, metrics will be disabled", "error", err, "meter", meterName)
		calls = noop.Int64Counter{}
	}

	duration, err := meter.Float64Histogram("opper.call.duration",
		metric.WithDescription("Latency of structured calls"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create call duration histogram, metrics will be disabled", "error", err, "meter", meterName)
		duration = noop.Float64Histogram{}
	}

	inputTokens, err := meter.Int64Counter("opper.token.input",
		metric.WithDescription("The number of input tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create input tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		inputTokens = noop.Int64Counter{}
	}

	outputTokens, err := meter.Int64Counter("opper.token.output",
		metric.WithDescription("The number of output tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create output tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		outputTokens = noop.Int64Counter{}
	}

	return &Calls{
		calls:        calls,
		duration:     duration,
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
	}
}

// StatusCoder is implemented by API errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// outcome classifies err as "ok", "error", or the HTTP status code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return strconv.Itoa(sc.HTTPStatus())
	}
	return "error"
}

// RecordCall records one call attempt sequence and its latency.
func (m *Calls) RecordCall(ctx context.Context, name string, d time.Duration, err error, attrs ...attribute.KeyValue) {
	base := append([]attribute.KeyValue{
		attribute.String("call", name),
		attribute.String("outcome", outcome(err)),
	}, attrs...)

	m.calls.Add(ctx, 1, metric.WithAttributes(base...))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(base...))
}

// RecordTokens records token usage reported for a call.
func (m *Calls) RecordTokens(ctx context.Context, name string, input, output int64, attrs ...attribute.KeyValue) {
	base := append([]attribute.KeyValue{attribute.String("call", name)}, attrs...)
	m.inputTokens.Add(ctx, input, metric.WithAttributes(base...))
	m.outputTokens.Add(ctx, output, metric.WithAttributes(base...))
}
