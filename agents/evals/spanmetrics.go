/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"fmt"
	"sync"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"github.com/chainguard-dev/clog"
)

// MetricWriter attaches a metric to a span. *agenttrace.Recorder
// implements it.
type MetricWriter interface {
	Metric(ctx context.Context, spanID, dimension string, value float64, comment string) error
}

// SpanMetrics wraps cb so that its verdict is also written as a metric
// named dimension on the span of the evaluated call:
//
//   - Fail records 0, with the failure message as the comment.
//   - Grade records the score, with the reasoning as the comment.
//   - Neither records 1.
//
// comment is used when the verdict carries none. Traces without a span
// id (the call never reached the service) are logged and not recorded.
// Errors writing the metric are logged to the observer.
func SpanMetrics[T any](w MetricWriter, dimension, comment string, cb ObservableTraceCallback[T]) ObservableTraceCallback[T] {
	return func(o Observer, trace *agenttrace.Trace[T]) {
		v := &verdict{Observer: o, value: 1}
		cb(v, trace)

		spanID := trace.RemoteSpanID()
		if spanID == "" {
			o.Log(fmt.Sprintf("%s: no span to record on", dimension))
			return
		}
		value, note := v.result()
		if note == "" {
			note = comment
		}
		ctx := trace.Context()
		if err := w.Metric(ctx, spanID, dimension, value, note); err != nil {
			o.Log(fmt.Sprintf("%s: %v", dimension, err))
			return
		}
		clog.FromContext(ctx).With("span_id", spanID).Debugf("recorded %s=%v", dimension, value)
	}
}

// verdict passes everything through to the wrapped observer and remembers
// the outcome. A failure wins over any grade.
type verdict struct {
	Observer

	mu     sync.Mutex
	failed bool
	value  float64
	note   string
}

func (v *verdict) Fail(msg string) {
	v.mu.Lock()
	if !v.failed {
		v.failed, v.value, v.note = true, 0, msg
	}
	v.mu.Unlock()
	v.Observer.Fail(msg)
}

func (v *verdict) Grade(score float64, reasoning string) {
	v.mu.Lock()
	if !v.failed {
		v.value, v.note = score, reasoning
	}
	v.mu.Unlock()
	v.Observer.Grade(score, reasoning)
}

func (v *verdict) result() (float64, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.note
}
