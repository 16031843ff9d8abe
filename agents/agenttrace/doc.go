/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records structured calls, locally and on the service.

Locally, a Trace[T] captures one call: its name, input, decoded result or
error, the span id the service assigned, and an OpenTelemetry span.
Completed traces go to the Tracer[T] found in the context, which for
evaluations is usually ByCode with one or more callbacks:

	tracer := agenttrace.ByCode[Room](func(tr *agenttrace.Trace[Room]) {
		log.Printf("%s -> %+v", tr.Name, tr.Result)
	})
	ctx = agenttrace.WithTracer[Room](ctx, tracer)

	comp, err := agenttrace.Call[Room](ctx, client, opper.CallRequest{...})

On the service, a Recorder creates spans, overwrites their fields and
attaches metrics. Spans nest through the context:

	rec := agenttrace.NewRecorder(client)
	root, err := rec.Start(ctx, "person_data_processing")
	ctx = root.Context(ctx) // calls made with ctx are children of root
	...
	err = root.Update(ctx, agenttrace.SpanUpdate{Output: personas, Meta: meta})
	err = root.Metric(ctx, "n_failed", 0, "Number of personas with failed summary")
*/
package agenttrace
