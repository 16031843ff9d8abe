/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// JudgmentMode specifies the type of judgment to perform.
type JudgmentMode string

const (
	// GoldenMode evaluates a response against a reference answer.
	GoldenMode JudgmentMode = "golden"
	// BenchmarkMode compares two responses to determine which is better.
	BenchmarkMode JudgmentMode = "benchmark"
	// StandaloneMode evaluates a single response against a criterion.
	StandaloneMode JudgmentMode = "standalone"
)

// Request is the input of a judgment.
type Request struct {
	Mode JudgmentMode `json:"mode" jsonschema:"required,enum=golden,enum=benchmark,enum=standalone"`

	// ReferenceAnswer is the golden answer in golden mode and the first
	// candidate in benchmark mode. It must be empty in standalone mode.
	ReferenceAnswer string `json:"reference_answer,omitempty"`

	// ActualAnswer is the answer to evaluate.
	ActualAnswer string `json:"actual_answer" jsonschema:"required"`

	Criterion string `json:"criterion" jsonschema:"required"`
}

// Validate checks the fields required by the request's mode.
func (r *Request) Validate() error {
	switch r.Mode {
	case GoldenMode, BenchmarkMode:
		if r.ReferenceAnswer == "" {
			return fmt.Errorf("reference_answer is required for %s mode", r.Mode)
		}
	case StandaloneMode:
		if r.ReferenceAnswer != "" {
			return errors.New("reference_answer must not be provided for standalone mode")
		}
	default:
		return fmt.Errorf("unsupported mode: %q", r.Mode)
	}
	if r.ActualAnswer == "" {
		return fmt.Errorf("actual_answer is required for %s mode", r.Mode)
	}
	if r.Criterion == "" {
		return fmt.Errorf("criterion is required for %s mode", r.Mode)
	}
	return nil
}

// Judgement is the result of a judgment.
type Judgement struct {
	Mode JudgmentMode `json:"mode" jsonschema:"required"`

	// Score runs from 0.0 (awful) to 1.0 (ideal). In benchmark mode it
	// runs from -1.0 (reference much better) to 1.0 (actual much better).
	Score float64 `json:"score" jsonschema:"required,minimum=-1,maximum=1"`

	Reasoning string `json:"reasoning" jsonschema:"required"`

	// Suggestions is empty for perfect scores.
	Suggestions []string `json:"suggestions"`
}

// String renders the judgment the way evaluation logs show grades.
func (j *Judgement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade: %.2f", j.Score)
	if j.Reasoning != "" {
		fmt.Fprintf(&sb, " - %s", j.Reasoning)
	}
	for _, s := range j.Suggestions {
		fmt.Fprintf(&sb, "\n  Suggestion: %s", s)
	}
	return sb.String()
}

// Interface is implemented by judges.
type Interface interface {
	Judge(ctx context.Context, request *Request) (*Judgement, error)
}
