/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chainguard.dev/opperexploration/opper"
	"github.com/chainguard-dev/clog"
)

// SpanStore is the subset of *opper.Client used to record spans.
type SpanStore interface {
	CreateSpan(ctx context.Context, req opper.CreateSpanRequest) (*opper.Span, error)
	UpdateSpan(ctx context.Context, id string, req opper.UpdateSpanRequest) (*opper.Span, error)
	CreateSpanMetric(ctx context.Context, spanID string, req opper.CreateSpanMetricRequest) (*opper.SpanMetric, error)
}

// Recorder writes spans and span metrics to the service.
type Recorder struct {
	store SpanStore
}

// NewRecorder returns a Recorder backed by store.
func NewRecorder(store SpanStore) *Recorder {
	return &Recorder{store: store}
}

// Span is a handle to a span recorded on the service.
type Span struct {
	id   string
	name string
	rec  *Recorder
}

// StartOption configures Start.
type StartOption func(*opper.CreateSpanRequest) error

// WithInput sets the span input. Non-string values are stored as JSON.
func WithInput(v any) StartOption {
	return func(req *opper.CreateSpanRequest) error {
		s, err := text(v)
		if err != nil {
			return fmt.Errorf("encode span input: %w", err)
		}
		req.Input = s
		return nil
	}
}

// WithParent nests the span under parentID, overriding the context.
func WithParent(parentID string) StartOption {
	return func(req *opper.CreateSpanRequest) error {
		req.ParentID = parentID
		return nil
	}
}

// Start creates a span. It is nested under the parent span carried by ctx,
// if any.
func (r *Recorder) Start(ctx context.Context, name string, opts ...StartOption) (*Span, error) {
	req := opper.CreateSpanRequest{
		Name:      name,
		ParentID:  ParentSpanFromContext(ctx),
		StartTime: time.Now().UTC(),
	}
	for _, opt := range opts {
		if err := opt(&req); err != nil {
			return nil, err
		}
	}
	sp, err := r.store.CreateSpan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create span %q: %w", name, err)
	}
	clog.FromContext(ctx).With("span_id", sp.ID).Debugf("started span %s", name)
	return &Span{id: sp.ID, name: name, rec: r}, nil
}

// Metric attaches a metric to any span by id. Metrics are append-only;
// recording the same dimension twice stores two values.
func (r *Recorder) Metric(ctx context.Context, spanID, dimension string, value float64, comment string) error {
	if _, err := r.store.CreateSpanMetric(ctx, spanID, opper.CreateSpanMetricRequest{
		Dimension: dimension,
		Value:     value,
		Comment:   comment,
	}); err != nil {
		return fmt.Errorf("record metric %s on span %s: %w", dimension, spanID, err)
	}
	return nil
}

// ID returns the service span id.
func (s *Span) ID() string { return s.id }

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// Context returns ctx with this span as the parent of new spans and calls.
func (s *Span) Context(ctx context.Context) context.Context {
	return WithParentSpan(ctx, s.id)
}

// SpanUpdate holds the fields to overwrite on a span. Input and Output
// that are not strings are stored as JSON. Zero fields are left as they
// are; Meta replaces the previous meta entirely.
type SpanUpdate struct {
	Input  any
	Output any
	Meta   map[string]any
}

// Update overwrites the given fields.
func (s *Span) Update(ctx context.Context, u SpanUpdate) error {
	req, err := updateRequest(u)
	if err != nil {
		return err
	}
	return s.update(ctx, req)
}

// End records the output and end time of the span.
func (s *Span) End(ctx context.Context, output any) error {
	req, err := updateRequest(SpanUpdate{Output: output})
	if err != nil {
		return err
	}
	req.EndTime = time.Now().UTC()
	return s.update(ctx, req)
}

// Metric attaches a metric to this span.
func (s *Span) Metric(ctx context.Context, dimension string, value float64, comment string) error {
	return s.rec.Metric(ctx, s.id, dimension, value, comment)
}

func (s *Span) update(ctx context.Context, req opper.UpdateSpanRequest) error {
	if _, err := s.rec.store.UpdateSpan(ctx, s.id, req); err != nil {
		return fmt.Errorf("update span %s: %w", s.id, err)
	}
	return nil
}

func updateRequest(u SpanUpdate) (opper.UpdateSpanRequest, error) {
	in, err := text(u.Input)
	if err != nil {
		return opper.UpdateSpanRequest{}, fmt.Errorf("encode span input: %w", err)
	}
	out, err := text(u.Output)
	if err != nil {
		return opper.UpdateSpanRequest{}, fmt.Errorf("encode span output: %w", err)
	}
	return opper.UpdateSpanRequest{Input: in, Output: out, Meta: u.Meta}, nil
}

func text(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
