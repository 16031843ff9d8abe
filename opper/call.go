/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"chainguard.dev/opperexploration/agents/result"
	"chainguard.dev/opperexploration/agents/schema"
)

// Completion is the decoded result of a structured call.
type Completion[T any] struct {
	// SpanID identifies the span the service recorded for this call. Use it
	// to attach metrics or to nest later calls.
	SpanID string
	// Payload is the structured output decoded into T.
	Payload T
	// Raw is the undecoded json_payload. It is nil when the service
	// returned no structured output.
	Raw     json.RawMessage
	Message string
	Cached  bool
	Usage   *Usage
}

// Empty reports whether the service returned no structured payload.
func (c *Completion[T]) Empty() bool {
	return len(c.Raw) == 0 || string(c.Raw) == "null"
}

// Invoke sends a structured call and returns the raw response. When the
// request declares an input schema the input is validated locally first
// and an ErrInvalidInput error is returned without contacting the
// service. Outputs are never re-validated: conformance to the output
// schema is enforced by the service.
func (c *Client) Invoke(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if err := validateInput(req.InputSchema, req.Input); err != nil {
		return nil, err
	}

	start := time.Now()
	var resp CallResponse
	err := c.post(ctx, "/v2/call", req, &resp)
	c.metrics.RecordCall(ctx, req.Name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if resp.Usage != nil {
		c.metrics.RecordTokens(ctx, req.Name, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	return &resp, nil
}

// Call runs a structured call and decodes the payload into Out. If the
// request has no output schema, one is reflected from Out.
func Call[Out any](ctx context.Context, c *Client, req CallRequest) (*Completion[Out], error) {
	if len(req.OutputSchema) == 0 {
		s, err := SchemaFor[Out]()
		if err != nil {
			return nil, err
		}
		req.OutputSchema = s
	}
	resp, err := c.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeCompletion[Out](resp)
}

// CallFunction invokes a stored function by id and decodes the payload
// into Out. The function's own schemas apply; none are sent.
func CallFunction[Out any](ctx context.Context, c *Client, functionID string, req FunctionCallRequest) (*Completion[Out], error) {
	start := time.Now()
	resp, err := c.InvokeFunction(ctx, functionID, req)
	c.metrics.RecordCall(ctx, functionID, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if resp.Usage != nil {
		c.metrics.RecordTokens(ctx, functionID, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	return decodeCompletion[Out](resp)
}

func decodeCompletion[Out any](resp *CallResponse) (*Completion[Out], error) {
	comp := &Completion[Out]{
		SpanID:  resp.SpanID,
		Raw:     resp.JSONPayload,
		Message: resp.Message,
		Cached:  resp.Cached,
		Usage:   resp.Usage,
	}
	if comp.Empty() {
		return comp, nil
	}
	payload, err := result.Decode[Out](resp.JSONPayload)
	if err != nil {
		return nil, fmt.Errorf("opper: decode json_payload of span %s: %w", resp.SpanID, err)
	}
	comp.Payload = payload
	return comp, nil
}

// SchemaFor reflects the JSON schema of T for use as an input or output
// schema. Dynamic types (any, json.RawMessage) have no schema and yield
// nil.
func SchemaFor[T any]() (json.RawMessage, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Interface || t == reflect.TypeFor[json.RawMessage]() {
		return nil, nil
	}
	raw, err := schema.ReflectTypeJSON[T]()
	if err != nil {
		return nil, fmt.Errorf("opper: reflect schema for %s: %w", t, err)
	}
	return raw, nil
}

// MustSchemaFor is SchemaFor for package-level declarations of static
// types. It panics if reflection fails.
func MustSchemaFor[T any]() json.RawMessage {
	s, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func validateInput(inputSchema json.RawMessage, input any) error {
	if len(inputSchema) == 0 {
		return nil
	}
	if err := schema.Validate(inputSchema, input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}
