/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func randomString() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// mockTracer is a generic test implementation of Tracer[T]
type mockTracer[T any] struct {
	traces *[]*Trace[T]
}

func (m *mockTracer[T]) NewTrace(ctx context.Context, name string, input any) *Trace[T] {
	return newTraceWithTracer[T](ctx, m, name, input)
}

func (m *mockTracer[T]) RecordTrace(trace *Trace[T]) {
	*m.traces = append(*m.traces, trace)
}

func TestWithTracer(t *testing.T) {
	ctx := context.Background()
	var traces []*Trace[string]
	tracer := &mockTracer[string]{traces: &traces}

	ctxWithTracer := WithTracer[string](ctx, tracer)
	if retrieved := TracerFromContext[string](ctxWithTracer); retrieved != tracer {
		t.Errorf("retrieved tracer: got = %v, wanted = %v", retrieved, tracer)
	}

	// Without a tracer the default logging tracer is used.
	if retrieved := TracerFromContext[string](ctx); retrieved == nil {
		t.Error("retrieved tracer from empty context: got = nil, wanted = default tracer")
	}
}

func TestStartTraceDefaultTracer(t *testing.T) {
	trace := StartTrace[string](context.Background(), "respond", "q")
	if trace == nil {
		t.Fatal("start trace without explicit tracer: got = nil")
	}
	trace.Complete("a", nil)
	trace2 := StartTrace[string](context.Background(), "respond", "q")
	trace2.Complete("", errors.New("boom"))
}

func TestAutoRecordTrace(t *testing.T) {
	var traces []*Trace[string]
	ctx := WithTracer[string](context.Background(), &mockTracer[string]{traces: &traces})

	name, input := randomString(), randomString()
	trace := StartTrace[string](ctx, name, input)
	trace.SetSpanID("span-1")
	trace.SetMetadata("attempt", 1)

	if len(traces) != 0 {
		t.Errorf("traces before completion: got = %d, wanted = 0", len(traces))
	}

	result := randomString()
	trace.Complete(result, nil)

	if len(traces) != 1 {
		t.Fatalf("traces after completion: got = %d, wanted = 1", len(traces))
	}
	got := traces[0]
	if got != trace {
		t.Errorf("recorded trace: got = %v, wanted = %v", got, trace)
	}
	if got.Name != name || got.Input != input || got.Result != result || got.RemoteSpanID() != "span-1" {
		t.Errorf("recorded trace = %+v", got)
	}
	if got.Duration() < 0 || got.EndTime.IsZero() {
		t.Errorf("trace timing not recorded: %v", got.Duration())
	}
}

func TestMultipleTracersWithDifferentTypes(t *testing.T) {
	var stringTraces []*Trace[string]
	var intTraces []*Trace[int]

	ctx := WithTracer[string](context.Background(), &mockTracer[string]{traces: &stringTraces})
	ctx = WithTracer[int](ctx, &mockTracer[int]{traces: &intTraces})

	StartTrace[string](ctx, "a", nil).Complete("x", nil)
	StartTrace[int](ctx, "b", nil).Complete(42, nil)

	if len(stringTraces) != 1 || len(intTraces) != 1 {
		t.Fatalf("traces: got = (%d, %d), wanted = (1, 1)", len(stringTraces), len(intTraces))
	}
	if intTraces[0].Result != 42 {
		t.Errorf("int trace result: got = %v, wanted = 42", intTraces[0].Result)
	}
}

func TestTraceString(t *testing.T) {
	var traces []*Trace[map[string]int]
	ctx := WithTracer[map[string]int](context.Background(), &mockTracer[map[string]int]{traces: &traces})

	trace := StartTrace[map[string]int](ctx, "extractRoom", strings.Repeat("x", 300))
	trace.SetSpanID("span-9")
	trace.SetMetadata("case", "luxury")
	trace.Complete(map[string]int{"room_count": 3}, nil)

	s := trace.String()
	for _, want := range []string{"Call: extractRoom", "Span: span-9", "room_count:3", "case: luxury", "..."} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}

	failed := StartTrace[map[string]int](ctx, "extractRoom", nil)
	failed.Complete(nil, errors.New("upstream"))
	if s := failed.String(); !strings.Contains(s, "Error: upstream") {
		t.Errorf("String() = %s", s)
	}
}

func TestByCode(t *testing.T) {
	var captured *Trace[string]
	tracer := ByCode[string](func(trace *Trace[string]) { captured = trace })

	trace := tracer.NewTrace(context.Background(), "respond", "q")
	trace.Complete("a", nil)

	if captured != trace {
		t.Errorf("captured trace: got = %v, wanted = %v", captured, trace)
	}
}

func TestByCodeWithNilAndNoCallbacks(t *testing.T) {
	ByCode[string](nil).NewTrace(context.Background(), "a", nil).Complete("x", nil)
	ByCode[string]().NewTrace(context.Background(), "b", nil).Complete("y", nil)
}

func TestByCodeWithMultipleCallbacks(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]*Trace[string]{}
	cb := func(i int) TraceCallback[string] {
		return func(trace *Trace[string]) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = trace
		}
	}

	tracer := ByCode[string](cb(1), cb(2), cb(3))
	trace := tracer.NewTrace(context.Background(), "respond", nil)
	trace.Complete("a", nil)

	for i := 1; i <= 3; i++ {
		if seen[i] != trace {
			t.Errorf("callback %d received %v", i, seen[i])
		}
	}
}

func TestByCodeParallelExecution(t *testing.T) {
	started := make(chan int, 3)
	proceed := make(chan struct{})
	cb := func(i int) TraceCallback[string] {
		return func(*Trace[string]) {
			started <- i
			<-proceed
		}
	}

	tracer := ByCode[string](cb(1), cb(2), cb(3))
	trace := tracer.NewTrace(context.Background(), "respond", nil)

	done := make(chan struct{})
	go func() {
		trace.Complete("a", nil)
		close(done)
	}()

	timeout := time.After(time.Second)
	for range 3 {
		select {
		case <-started:
		case <-timeout:
			t.Fatal("Callbacks did not start in parallel")
		}
	}
	close(proceed)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Trace completion did not finish")
	}
}

func TestParentSpanContext(t *testing.T) {
	ctx := context.Background()
	if got := ParentSpanFromContext(ctx); got != "" {
		t.Errorf("ParentSpanFromContext(empty) = %q", got)
	}
	ctx = WithParentSpan(ctx, "root")
	if got := ParentSpanFromContext(ctx); got != "root" {
		t.Errorf("ParentSpanFromContext() = %q, want root", got)
	}
}
