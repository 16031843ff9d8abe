/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package fewshot seeds a function's dataset with worked examples. The
// service injects dataset entries into invocations of the function as
// few-shot examples, up to the function's invocation.few_shot.count.
package fewshot

import (
	"context"
	"encoding/json"
	"fmt"

	"chainguard.dev/opperexploration/opper"
	"github.com/chainguard-dev/clog"
)

// Example is one worked input/output pair. Input and Output are stored
// as JSON text; strings are stored verbatim.
type Example struct {
	Input   any
	Output  any
	Comment string
}

// Store is the subset of *opper.Client used for seeding.
type Store interface {
	ListDatasetEntries(ctx context.Context, datasetID string, opts *opper.ListOptions) (*opper.DatasetEntries, error)
	CreateDatasetEntry(ctx context.Context, datasetID string, req opper.CreateDatasetEntryRequest) (*opper.DatasetEntry, error)
}

// Failure records an example that could not be added.
type Failure struct {
	// Index is the 1-based position of the example.
	Index   int
	Comment string
	Err     error
}

// Report summarizes a Seed run.
type Report struct {
	DatasetID string
	// Skipped is true when the dataset already had entries.
	Skipped bool
	// Existing is the number of entries found when Skipped is true.
	Existing int
	// Added counts the examples written, out of Total.
	Added    int
	Total    int
	Failures []Failure
}

// Seed adds examples to the dataset only if it is empty. A failure to
// list the dataset is logged and seeding proceeds. Examples that fail to
// be added are recorded in the report and do not stop the others. The
// error is non-nil only if ctx ends first.
func Seed(ctx context.Context, store Store, datasetID string, examples []Example) (Report, error) {
	log := clog.FromContext(ctx).With("dataset", datasetID)
	report := Report{DatasetID: datasetID, Total: len(examples)}

	page, err := store.ListDatasetEntries(ctx, datasetID, &opper.ListOptions{Limit: 1})
	switch {
	case err != nil:
		log.Warnf("Could not check existing dataset entries: %v. Proceeding with example addition.", err)
	case page.Meta.TotalCount > 0 || len(page.Data) > 0:
		report.Skipped = true
		report.Existing = max(page.Meta.TotalCount, len(page.Data))
		log.Infof("Dataset %s already has %d entries. Skipping example addition.", datasetID, report.Existing)
		return report, nil
	}

	log.Infof("Adding %d examples to empty dataset %s...", len(examples), datasetID)
	for i, ex := range examples {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		req, err := entryRequest(ex)
		if err == nil {
			_, err = store.CreateDatasetEntry(ctx, datasetID, req)
		}
		if err != nil {
			log.Warnf("Error adding example %d: %v", i+1, err)
			report.Failures = append(report.Failures, Failure{Index: i + 1, Comment: ex.Comment, Err: err})
			continue
		}
		log.Infof("Added example %d: %s", i+1, ex.Comment)
		report.Added++
	}
	log.Infof("Successfully added %d/%d examples to dataset", report.Added, report.Total)
	return report, nil
}

func entryRequest(ex Example) (opper.CreateDatasetEntryRequest, error) {
	in, err := text(ex.Input)
	if err != nil {
		return opper.CreateDatasetEntryRequest{}, fmt.Errorf("encode input: %w", err)
	}
	out, err := text(ex.Output)
	if err != nil {
		return opper.CreateDatasetEntryRequest{}, fmt.Errorf("encode output: %w", err)
	}
	return opper.CreateDatasetEntryRequest{Input: in, Output: out, Comment: ex.Comment}, nil
}

func text(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
