/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"fmt"
	"strings"

	"chainguard.dev/opperexploration/agents/evals"
)

// Generator renders an observer tree. The boolean reports whether any
// evaluation fell below threshold.
type Generator func(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool)

var _ Generator = Table

// row is the summary of one evaluated namespace.
type row struct {
	name     string
	runs     int64
	passed   int64
	grades   []evals.Grade
	failures []string
}

func (r row) passRate() float64 {
	return float64(r.passed) / float64(r.runs)
}

func (r row) avgGrade() (float64, bool) {
	if len(r.grades) == 0 {
		return 0, false
	}
	var sum float64
	for _, g := range r.grades {
		sum += g.Score
	}
	return sum / float64(len(r.grades)), true
}

func (r row) below(threshold float64) bool {
	if r.passRate() < threshold {
		return true
	}
	avg, ok := r.avgGrade()
	return ok && avg < threshold
}

// Table renders a markdown table with one line per evaluated namespace
// (pass rate and average grade), followed by the failure messages of
// namespaces below threshold. Namespaces that saw no traces are omitted.
func Table(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	var rows []row
	obs.Walk(func(name string, c *evals.ResultCollector) {
		runs := c.Total()
		if runs == 0 {
			return
		}
		failures := c.Failures()
		rows = append(rows, row{
			name:     name,
			runs:     runs,
			passed:   max(runs-int64(len(failures)), 0),
			grades:   c.Grades(),
			failures: failures,
		})
	})
	if len(rows) == 0 {
		return "", false
	}

	var buf bytes.Buffer
	table := createStandardTable([]string{"Evaluation", "Runs", "Pass rate", "Avg grade"}, &buf)
	anyBelow := false
	for _, r := range rows {
		below := r.below(threshold)
		anyBelow = anyBelow || below

		name := r.name
		if below {
			name = "❌ " + name
		}
		grade := "-"
		if avg, ok := r.avgGrade(); ok {
			grade = fmt.Sprintf("%.2f", avg)
		}
		_ = table.Append([]string{
			name,
			fmt.Sprintf("%d", r.runs),
			fmt.Sprintf("%d/%d (%.1f%%)", r.passed, r.runs, r.passRate()*100),
			grade,
		})
	}
	_ = table.Render()

	var sb strings.Builder
	sb.WriteString(buf.String())
	for _, r := range rows {
		if !r.below(threshold) {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", r.name)
		for _, f := range r.failures {
			fmt.Fprintf(&sb, "  - %s\n", f)
		}
		for _, g := range r.grades {
			if g.Score < threshold {
				fmt.Fprintf(&sb, "  - grade %.2f: %s\n", g.Score, g.Reasoning)
			}
		}
	}
	return sb.String(), anyBelow
}
