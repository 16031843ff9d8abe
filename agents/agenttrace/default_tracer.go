/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer creates a tracer that logs completed traces to clog.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	logger := clog.FromContext(ctx)

	return ByCode[T](func(trace *Trace[T]) {
		l := logger.With(
			"trace_id", trace.ID,
			"call", trace.Name,
			"span_id", trace.RemoteSpanID(),
			"duration_ms", trace.Duration().Milliseconds(),
		)
		if trace.Error != nil {
			l.Warn("Call trace completed with error", "error", trace.Error)
			return
		}
		l.Debug("Call trace completed", "trace", trace.String())
	})
}
