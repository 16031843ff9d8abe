/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"chainguard.dev/opperexploration/opper"
)

// Call runs a structured call inside a trace. The call is nested under
// the parent span carried by ctx unless the request names one. The trace
// is completed, and so handed to the tracer for T from ctx, before Call
// returns.
func Call[T any](ctx context.Context, c *opper.Client, req opper.CallRequest) (*opper.Completion[T], error) {
	if req.ParentSpanID == "" {
		req.ParentSpanID = ParentSpanFromContext(ctx)
	}
	trace := StartTrace[T](ctx, req.Name, req.Input)

	comp, err := opper.Call[T](trace.Context(), c, req)
	if err != nil {
		var zero T
		trace.Complete(zero, err)
		return nil, err
	}
	trace.SetSpanID(comp.SpanID)
	if comp.Usage != nil {
		trace.RecordTokenUsage(comp.Usage.InputTokens, comp.Usage.OutputTokens)
	}
	trace.SetRaw(comp.Raw)
	trace.Complete(comp.Payload, nil)
	return comp, nil
}

// CallFunction is Call for a stored function.
func CallFunction[T any](ctx context.Context, c *opper.Client, fn *opper.Function, req opper.FunctionCallRequest) (*opper.Completion[T], error) {
	if req.ParentSpanID == "" {
		req.ParentSpanID = ParentSpanFromContext(ctx)
	}
	trace := StartTrace[T](ctx, fn.Name, req.Input)

	comp, err := opper.CallFunction[T](trace.Context(), c, fn.ID, req)
	if err != nil {
		var zero T
		trace.Complete(zero, err)
		return nil, err
	}
	trace.SetSpanID(comp.SpanID)
	if comp.Usage != nil {
		trace.RecordTokenUsage(comp.Usage.InputTokens, comp.Usage.OutputTokens)
	}
	trace.SetRaw(comp.Raw)
	trace.Complete(comp.Payload, nil)
	return comp, nil
}
