/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"chainguard.dev/opperexploration/agents/evals"
)

// NewGoldenEval grades each trace's result against goldenAnswer on
// criterion. callbacks receive the judge's own traces; passing none
// keeps them out of the default logging tracer's output.
func NewGoldenEval[T any](j Interface, criterion, goldenAnswer string, callbacks ...agenttrace.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return newEval[T](j, callbacks, func(actual string) *Request {
		return &Request{
			Mode:            GoldenMode,
			ReferenceAnswer: goldenAnswer,
			ActualAnswer:    actual,
			Criterion:       criterion,
		}
	})
}

// NewStandaloneEval grades each trace's result on criterion alone.
func NewStandaloneEval[T any](j Interface, criterion string, callbacks ...agenttrace.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return newEval[T](j, callbacks, func(actual string) *Request {
		return &Request{
			Mode:         StandaloneMode,
			ActualAnswer: actual,
			Criterion:    criterion,
		}
	})
}

func newEval[T any](j Interface, callbacks []agenttrace.TraceCallback[*Judgement], build func(actual string) *Request) evals.ObservableTraceCallback[T] {
	return func(o evals.Observer, trace *agenttrace.Trace[T]) {
		if trace.Error != nil {
			o.Fail(fmt.Sprintf("call failed, nothing to judge: %v", trace.Error))
			return
		}
		if isNilResult(trace.Result) {
			o.Fail("Failed to extract response: trace has no result")
			return
		}
		data, err := json.MarshalIndent(trace.Result, "", "  ")
		if err != nil {
			o.Fail(fmt.Sprintf("Failed to extract response: failed to marshal result: %v", err))
			return
		}

		// The judge call nests under the judged call's span.
		ctx := agenttrace.WithTracer(context.Background(), agenttrace.ByCode(callbacks...))
		ctx = agenttrace.WithParentSpan(ctx, trace.RemoteSpanID())
		resp, err := j.Judge(ctx, build(string(data)))
		if err != nil {
			o.Fail(fmt.Sprintf("Judge failed: %v", err))
			return
		}
		if resp == nil {
			o.Fail("Judge returned nil response")
			return
		}

		o.Grade(resp.Score, resp.Reasoning)
		for _, s := range resp.Suggestions {
			o.Log("  Suggestion: " + s)
		}
	}
}

func isNilResult[T any](value T) bool {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
