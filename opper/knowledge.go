/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"context"
	"net/url"
)

// CreateKnowledgeBase creates a knowledge base.
func (c *Client) CreateKnowledgeBase(ctx context.Context, req CreateKnowledgeBaseRequest) (*KnowledgeBase, error) {
	var resp KnowledgeBase
	if err := c.post(ctx, "/v2/knowledge", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetKnowledgeBaseByName retrieves a knowledge base by name.
func (c *Client) GetKnowledgeBaseByName(ctx context.Context, name string) (*KnowledgeBase, error) {
	var resp KnowledgeBase
	if err := c.get(ctx, "/v2/knowledge/by-name/"+url.PathEscape(name), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteKnowledgeBase deletes a knowledge base and its entries.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, id string) error {
	return c.doDelete(ctx, "/v2/knowledge/"+url.PathEscape(id))
}

// AddKnowledge stores an entry. An entry with the same key in the same
// knowledge base is overwritten.
func (c *Client) AddKnowledge(ctx context.Context, knowledgeBaseID string, entry KnowledgeEntry) error {
	return c.post(ctx, "/v2/knowledge/"+url.PathEscape(knowledgeBaseID)+"/add", entry, nil)
}

// QueryKnowledge runs a semantic query. Ranking, filtering and the top_k
// bound are applied by the service; results are returned exactly as
// received.
func (c *Client) QueryKnowledge(ctx context.Context, knowledgeBaseID string, req QueryRequest) ([]QueryResult, error) {
	var resp []QueryResult
	if err := c.post(ctx, "/v2/knowledge/"+url.PathEscape(knowledgeBaseID)+"/query", req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
