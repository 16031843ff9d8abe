/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"
	"math"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"chainguard.dev/opperexploration/agents/evals"
)

// ValidScore checks that the score lies in the range of the mode.
func ValidScore(mode JudgmentMode) evals.ObservableTraceCallback[*Judgement] {
	lo := 0.0
	if mode == BenchmarkMode {
		lo = -1
	}
	return evals.ResultValidator(func(result *Judgement) error {
		switch mode {
		case GoldenMode, BenchmarkMode, StandaloneMode:
		default:
			return fmt.Errorf("unknown judgment mode: %s", mode)
		}
		if result.Score < lo || result.Score > 1 {
			return fmt.Errorf("score %.2f is out of range [%g, 1] for %s mode", result.Score, lo, mode)
		}
		return nil
	})
}

// HasReasoning checks that the judgment explains itself.
func HasReasoning() evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if result.Reasoning == "" {
			return errors.New("judgment has no reasoning")
		}
		return nil
	})
}

// CheckMode checks the mode echoed in the judgment.
func CheckMode(expected JudgmentMode) evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if result.Mode != expected {
			return fmt.Errorf("mode %s does not match expected %s", result.Mode, expected)
		}
		return nil
	})
}

// ScoreRange grades how well the score fits [minScore, maxScore]: 1 inside
// the range, decreasing linearly with the distance outside it and
// reaching 0 at twice the range width.
func ScoreRange(minScore, maxScore float64) evals.ObservableTraceCallback[*Judgement] {
	return func(o evals.Observer, trace *agenttrace.Trace[*Judgement]) {
		if trace.Result == nil {
			o.Fail("judgment result is nil")
			return
		}
		score := trace.Result.Score
		grade := rangeGrade(score, minScore, maxScore)
		where := "within"
		if grade < 1 {
			where = "outside"
		}
		o.Grade(grade, fmt.Sprintf("score %.2f is %s expected range [%.2f, %.2f]", score, where, minScore, maxScore))
	}
}

func rangeGrade(score, minScore, maxScore float64) float64 {
	if score >= minScore && score <= maxScore {
		return 1
	}
	distance := min(math.Abs(score-minScore), math.Abs(score-maxScore))
	penalty := min(distance/((maxScore-minScore)*2), 1)
	return max(1-penalty, 0)
}

// Evals returns the standard quality checks for judgments in mode.
func Evals(mode JudgmentMode) map[string]evals.ObservableTraceCallback[*Judgement] {
	return map[string]evals.ObservableTraceCallback[*Judgement]{
		"no-errors":     evals.NoError[*Judgement](),
		"valid-score":   ValidScore(mode),
		"check-mode":    CheckMode(mode),
		"has-reasoning": HasReasoning(),
	}
}
