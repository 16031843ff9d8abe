/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"context"
	"net/url"
)

// CreateFunction creates a new function. The service does not guard name
// uniqueness on create; callers that need get-or-create semantics should
// go through agents/resolve.
func (c *Client) CreateFunction(ctx context.Context, req CreateFunctionRequest) (*Function, error) {
	var resp Function
	if err := c.post(ctx, "/v2/functions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFunction retrieves a function by id.
func (c *Client) GetFunction(ctx context.Context, id string) (*Function, error) {
	var resp Function
	if err := c.get(ctx, "/v2/functions/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFunctionByName retrieves a function by its unique name.
// A missing function yields an error for which IsNotFound is true.
func (c *Client) GetFunctionByName(ctx context.Context, name string) (*Function, error) {
	var resp Function
	if err := c.get(ctx, "/v2/functions/by-name/"+url.PathEscape(name), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFunctions lists the functions of the account.
func (c *Client) ListFunctions(ctx context.Context, opts *ListOptions) (*Functions, error) {
	var resp Functions
	if err := c.get(ctx, "/v2/functions"+listQuery(opts), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateFunction updates the given fields of a function.
func (c *Client) UpdateFunction(ctx context.Context, id string, req UpdateFunctionRequest) (*Function, error) {
	var resp Function
	if err := c.patch(ctx, "/v2/functions/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFunction deletes a function.
func (c *Client) DeleteFunction(ctx context.Context, id string) error {
	return c.doDelete(ctx, "/v2/functions/"+url.PathEscape(id))
}

// InvokeFunction calls a function by id and returns the raw response.
// Use CallFunction to decode the payload into a Go type.
func (c *Client) InvokeFunction(ctx context.Context, id string, req FunctionCallRequest) (*CallResponse, error) {
	var resp CallResponse
	if err := c.post(ctx, "/v2/functions/"+url.PathEscape(id)+"/call", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
