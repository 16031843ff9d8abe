/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chainguard.dev/opperexploration/agents/executor/retry"
	"chainguard.dev/opperexploration/agents/metrics"
	"github.com/chainguard-dev/clog"
)

const userAgent = "opperexploration-go/1.0"

// Client is an HTTP client for the Opper API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retry   retry.RetryConfig
	metrics *metrics.Calls
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithRetry overrides the retry behavior derived from Config.
func WithRetry(cfg retry.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithMetrics records call counts and latency on the given instruments.
func WithMetrics(m *metrics.Calls) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client from the given configuration.
// Returns ErrMissingCredential if the API key is empty.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		retry: retry.RetryConfig{
			MaxRetries:  cfg.MaxRetries,
			BaseBackoff: cfg.RetryBaseBackoff,
			MaxBackoff:  cfg.RetryMaxBackoff,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.retry.Validate(); err != nil {
		return nil, fmt.Errorf("opper: retry config: %w", err)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewCalls("chainguard.opperexploration")
	}
	return c, nil
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func listQuery(opts *ListOptions) string {
	if opts == nil {
		return ""
	}
	params := url.Values{}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

func (c *Client) patch(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPatch, path, body, dest)
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("opper: marshal request body: %w", err)
		}
	}

	if c.retry.MaxRetries == 0 {
		return c.doOnce(ctx, method, path, encoded, dest)
	}
	_, err := retry.RetryWithBackoff(ctx, c.retry, method+" "+path, isRetryable, func() (struct{}, error) {
		return struct{}{}, c.doOnce(ctx, method, path, encoded, dest)
	})
	return err
}

func isRetryable(err error) bool {
	return IsRateLimited(err) || IsServerError(err)
}

func (c *Client) doOnce(ctx context.Context, method, path string, encoded []byte, dest any) error {
	var reader io.Reader
	if encoded != nil {
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("opper: create request: %w", err)
	}
	if encoded != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	clog.FromContext(ctx).Debugf("opper: %s %s", method, path)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("opper: %s %s: %w", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func handleResponse(resp *http.Response, dest any) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("opper: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := parseErrorResponse(resp.StatusCode, bodyBytes)
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return apiErr
	}

	// 204 No Content, or the caller does not want the body.
	if resp.StatusCode == http.StatusNoContent || dest == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, dest); err != nil {
		return fmt.Errorf("opper: decode response: %w", err)
	}
	return nil
}
