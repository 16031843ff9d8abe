/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.opperexploration.agenttrace"

// Trace records one structured call from input to result.
type Trace[T any] struct {
	ID string `json:"id"`
	// Name is the call or function name.
	Name  string `json:"name"`
	Input any    `json:"input"`
	// SpanID is the span the service recorded for the call. It is empty
	// until the service has answered.
	SpanID string `json:"span_id,omitempty"`
	Result T      `json:"result"`
	// Raw is the payload exactly as the service returned it. It is nil
	// for traces completed without a service response.
	Raw       json.RawMessage `json:"raw,omitempty"`
	Error     error           `json:"error,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	tracer    Tracer[T]
	mu        sync.Mutex
	ctx       context.Context
	span      oteltrace.Span
}

func newTraceWithTracer[T any](ctx context.Context, tracer Tracer[T], name string, input any) *Trace[T] {
	tr := otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))

	attrs := []attribute.KeyValue{attribute.String("opper.call.name", name)}
	if parent := ParentSpanFromContext(ctx); parent != "" {
		attrs = append(attrs, attribute.String("opper.parent_span_id", parent))
	}
	ctx, span := tr.Start(ctx, "opper.call", oteltrace.WithAttributes(attrs...))

	return &Trace[T]{
		ID:        generateTraceID(),
		Name:      name,
		Input:     input,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		tracer:    tracer,
		ctx:       ctx,
		span:      span,
	}
}

// Context returns the context carrying the trace's OpenTelemetry span.
func (t *Trace[T]) Context() context.Context {
	return t.ctx
}

// SetSpanID records the id of the span the service created for the call.
func (t *Trace[T]) SetSpanID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.SpanID = id
	if t.span != nil {
		t.span.SetAttributes(attribute.String("opper.span_id", id))
	}
}

// RemoteSpanID returns the service span id, or "" if none was recorded.
func (t *Trace[T]) RemoteSpanID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.SpanID
}

// SetRaw records the payload as returned by the service. An empty
// payload is recorded as JSON null so it stays distinguishable from a
// trace that never saw a response.
func (t *Trace[T]) SetRaw(raw json.RawMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	t.Raw = raw
}

// SetMetadata stores a key/value pair on the trace.
func (t *Trace[T]) SetMetadata(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Metadata[key] = value
}

// RecordTokenUsage records token usage as span attributes.
func (t *Trace[T]) RecordTokenUsage(inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.span != nil {
		t.span.SetAttributes(
			attribute.Int64("tokens.input", inputTokens),
			attribute.Int64("tokens.output", outputTokens),
			attribute.Int64("tokens.total", inputTokens+outputTokens),
		)
	}
}

// Complete records the outcome of the call, ends the span and hands the
// trace to its tracer.
func (t *Trace[T]) Complete(result T, err error) {
	t.mu.Lock()
	t.Result = result
	t.Error = err
	t.EndTime = time.Now()
	tracer := t.tracer
	span := t.span
	t.mu.Unlock()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	tracer.RecordTrace(t)
}

// Duration returns the time from start to completion, or to now if the
// trace is still open.
func (t *Trace[T]) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.durationLocked()
}

func (t *Trace[T]) durationLocked() time.Duration {
	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// String returns a human readable rendering of the trace.
func (t *Trace[T]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	fmt.Fprintf(&sb, "Call: %s\n", t.Name)
	if t.SpanID != "" {
		fmt.Fprintf(&sb, "Span: %s\n", t.SpanID)
	}
	fmt.Fprintf(&sb, "Duration: %v\n", t.durationLocked())
	fmt.Fprintf(&sb, "Input: %s\n", truncate(fmt.Sprintf("%v", t.Input), 200))

	switch {
	case t.Error != nil:
		fmt.Fprintf(&sb, "Error: %v\n", t.Error)
	case any(t.Result) != nil:
		fmt.Fprintf(&sb, "Result: %s\n", truncate(fmt.Sprintf("%+v", t.Result), 500))
	default:
		sb.WriteString("Result: <nil>\n")
	}

	if len(t.Metadata) > 0 {
		sb.WriteString("Metadata:\n")
		for k, v := range t.Metadata {
			fmt.Fprintf(&sb, "  %s: %v\n", k, v)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// generateTraceID returns YYYYMMDD-HHMMSS-RRRRRRRR with a random suffix.
func generateTraceID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102-150405.000000")
	}
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), hex.EncodeToString(b))
}
