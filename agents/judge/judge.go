/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"chainguard.dev/opperexploration/opper"
)

// CallName returns the name of the structured call used for mode, e.g.
// "judge/golden".
func CallName(mode JudgmentMode) string {
	return "judge/" + string(mode)
}

type opperJudge struct {
	client *opper.Client
	model  opper.Models
	tags   map[string]string
}

// Option configures the judge returned by New.
type Option func(*opperJudge)

// WithModel selects the model(s) the judge calls use. By default the
// service picks one.
func WithModel(m ...opper.Model) Option {
	return func(j *opperJudge) { j.model = m }
}

// WithTags attaches tags to every judge call.
func WithTags(tags map[string]string) Option {
	return func(j *opperJudge) { j.tags = tags }
}

// New returns a judge that runs each judgment as a structured call named
// after its mode, with Judgement as the output schema.
func New(client *opper.Client, opts ...Option) Interface {
	j := &opperJudge{client: client}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *opperJudge) Judge(ctx context.Context, request *Request) (*Judgement, error) {
	if request == nil {
		return nil, errors.New("judge request is nil")
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	comp, err := agenttrace.Call[*Judgement](ctx, j.client, opper.CallRequest{
		Name:         CallName(request.Mode),
		Instructions: instructions[request.Mode],
		InputSchema:  requestSchema,
		OutputSchema: judgementSchema,
		Input:        request,
		Model:        j.model,
		Tags:         j.tags,
	})
	if err != nil {
		return nil, fmt.Errorf("judge %s: %w", request.Mode, err)
	}
	if comp.Payload == nil {
		return nil, fmt.Errorf("judge %s: empty judgement (span %s)", request.Mode, comp.SpanID)
	}
	if comp.Payload.Mode == "" {
		comp.Payload.Mode = request.Mode
	}
	return comp.Payload, nil
}

var (
	requestSchema   = opper.MustSchemaFor[Request]()
	judgementSchema = opper.MustSchemaFor[Judgement]()
)
