/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge grades call results with a model.
//
// A judgment is itself a structured call, named "judge/golden",
// "judge/benchmark" or "judge/standalone", whose output is a Judgement:
//
//	j := judge.New(client)
//	res, err := j.Judge(ctx, &judge.Request{
//		Mode:            judge.GoldenMode,
//		ReferenceAnswer: `{"hotel_name": "The Grand Hotel"}`,
//		ActualAnswer:    string(raw),
//		Criterion:       "the hotel name is extracted exactly",
//	})
//
// NewGoldenEval and NewStandaloneEval turn a judge into an evaluation for
// the evals package. The score becomes the grade and the judge call is
// nested under the span of the call being judged.
package judge
