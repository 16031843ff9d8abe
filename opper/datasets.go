/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"context"
	"net/url"
)

// ListDatasetEntries lists the entries of a dataset.
func (c *Client) ListDatasetEntries(ctx context.Context, datasetID string, opts *ListOptions) (*DatasetEntries, error) {
	var resp DatasetEntries
	if err := c.get(ctx, "/v2/datasets/"+url.PathEscape(datasetID)+"/entries"+listQuery(opts), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateDatasetEntry adds an example to a dataset.
func (c *Client) CreateDatasetEntry(ctx context.Context, datasetID string, req CreateDatasetEntryRequest) (*DatasetEntry, error) {
	var resp DatasetEntry
	if err := c.post(ctx, "/v2/datasets/"+url.PathEscape(datasetID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteDatasetEntry removes an example from a dataset.
func (c *Client) DeleteDatasetEntry(ctx context.Context, datasetID, entryID string) error {
	return c.doDelete(ctx, "/v2/datasets/"+url.PathEscape(datasetID)+"/entries/"+url.PathEscape(entryID))
}
