/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import "context"

type parentSpanKey struct{}

// WithParentSpan returns a context under which new service spans and
// calls are nested below spanID.
func WithParentSpan(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, parentSpanKey{}, spanID)
}

// ParentSpanFromContext returns the span id set by WithParentSpan, or "".
func ParentSpanFromContext(ctx context.Context) string {
	id, _ := ctx.Value(parentSpanKey{}).(string)
	return id
}
