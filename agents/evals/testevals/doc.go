/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package testevals adapts testing.TB to evals.Observer, so evaluation
// failures fail the test:
//
//	obs := evals.NewNamespacedObserver(func(name string) evals.Observer {
//		return testevals.NewPrefix(t, name)
//	})
//	tracer := evals.BuildTracer(obs, map[string]evals.ObservableTraceCallback[Room]{
//		"no_error":         evals.NoError[Room](),
//		"hotel_name_exact": evals.EqualFold[Room]("hotel_name", "The Grand Hotel"),
//	})
//	ctx = agenttrace.WithTracer[Room](ctx, tracer)
package testevals
