/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders evaluation results collected in a tree of
// evals.ResultCollector observers.
//
//	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
//		return evals.NewResultCollector(testevals.New(t))
//	})
//	// ... run evaluations ...
//	out, below := report.Table(obs, 0.8)
package report
