/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"context"
	"net/url"
)

// CreateSpan creates a span. A span with a ParentID is nested under that
// span; a span without one is the root of a new trace.
func (c *Client) CreateSpan(ctx context.Context, req CreateSpanRequest) (*Span, error) {
	var resp Span
	if err := c.post(ctx, "/v2/spans", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSpan retrieves a span by id.
func (c *Client) GetSpan(ctx context.Context, id string) (*Span, error) {
	var resp Span
	if err := c.get(ctx, "/v2/spans/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSpan overwrites the given fields of a span.
func (c *Client) UpdateSpan(ctx context.Context, id string, req UpdateSpanRequest) (*Span, error) {
	var resp Span
	if err := c.patch(ctx, "/v2/spans/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSpan deletes a span.
func (c *Client) DeleteSpan(ctx context.Context, id string) error {
	return c.doDelete(ctx, "/v2/spans/"+url.PathEscape(id))
}

// CreateSpanMetric attaches a metric to a span. Metrics are not
// deduplicated by dimension.
func (c *Client) CreateSpanMetric(ctx context.Context, spanID string, req CreateSpanMetricRequest) (*SpanMetric, error) {
	var resp SpanMetric
	if err := c.post(ctx, "/v2/spans/"+url.PathEscape(spanID)+"/metrics", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSpanMetrics lists the metrics attached to a span.
func (c *Client) ListSpanMetrics(ctx context.Context, spanID string) ([]SpanMetric, error) {
	var resp struct {
		Data []SpanMetric `json:"data"`
	}
	if err := c.get(ctx, "/v2/spans/"+url.PathEscape(spanID)+"/metrics", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
