/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Tracer creates traces and receives them once they complete.
type Tracer[T any] interface {
	// NewTrace starts a trace of the named call.
	NewTrace(ctx context.Context, name string, input any) *Trace[T]
	// RecordTrace records a completed trace.
	RecordTrace(trace *Trace[T])
}

type tracerKey[T any] struct{}

// WithTracer returns a new context with the given tracer.
func WithTracer[T any](ctx context.Context, tracer Tracer[T]) context.Context {
	return context.WithValue(ctx, tracerKey[T]{}, tracer)
}

// TracerFromContext returns the tracer for T from the context, or the
// default logging tracer.
func TracerFromContext[T any](ctx context.Context) Tracer[T] {
	if tracer, ok := ctx.Value(tracerKey[T]{}).(Tracer[T]); ok {
		return tracer
	}
	return NewDefaultTracer[T](ctx)
}

// StartTrace starts a trace using the tracer from the context.
func StartTrace[T any](ctx context.Context, name string, input any) *Trace[T] {
	return TracerFromContext[T](ctx).NewTrace(ctx, name, input)
}

// TraceCallback receives completed traces.
type TraceCallback[T any] func(*Trace[T])

type byCodeTracer[T any] struct {
	callbacks []TraceCallback[T]
}

// ByCode returns a Tracer that hands each completed trace to every
// callback. Callbacks run in parallel; RecordTrace returns when all of
// them have.
func ByCode[T any](callbacks ...TraceCallback[T]) Tracer[T] {
	return &byCodeTracer[T]{callbacks: callbacks}
}

func (t *byCodeTracer[T]) NewTrace(ctx context.Context, name string, input any) *Trace[T] {
	return newTraceWithTracer[T](ctx, t, name, input)
}

func (t *byCodeTracer[T]) RecordTrace(trace *Trace[T]) {
	g := new(errgroup.Group)
	for _, callback := range t.callbacks {
		if callback != nil {
			g.Go(func() error {
				callback(trace)
				return nil
			})
		}
	}
	_ = g.Wait()
}
