/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evals evaluates structured calls in code.

An evaluation is an ObservableTraceCallback: it inspects a completed
agenttrace.Trace and reports to an Observer through Fail, Grade and Log.
Inject binds an evaluation to an observer so it can be handed to
agenttrace.ByCode, and NamespacedObserver gives every evaluation its own
node in a tree of observers for reporting:

	obs := evals.NewNamespacedObserver(evals.NewMetricsObserver[Room])
	tracer := evals.BuildTracer(obs.Child("extractRoom"), map[string]evals.ObservableTraceCallback[Room]{
		"has_all_required_fields": evals.RequiredFields[Room]("room_count", "view", "bed_size", "hotel_name"),
		"room_count_valid":        evals.InRange[Room]("room_count", 1, 10),
	})
	ctx = agenttrace.WithTracer[Room](ctx, tracer)

SpanMetrics additionally writes each verdict to the service as a metric
on the call's span, 1 for a pass, 0 for a failure, or the grade.

See the report and testevals subpackages for rendering results and for
failing Go tests.
*/
package evals
