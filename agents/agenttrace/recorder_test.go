/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace_test

import (
	"context"
	"net/http"
	"testing"

	"chainguard.dev/opperexploration/agents/agenttrace"
	"chainguard.dev/opperexploration/opper"
	"chainguard.dev/opperexploration/opper/opperfake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderSpanTree(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	rec := agenttrace.NewRecorder(fake.Client(t))

	root, err := rec.Start(ctx, "my_processing_pipeline", agenttrace.WithInput("some text"))
	require.NoError(t, err)

	child, err := rec.Start(root.Context(ctx), "translate")
	require.NoError(t, err)

	orphan, err := rec.Start(root.Context(ctx), "elsewhere", agenttrace.WithParent(""))
	require.NoError(t, err)

	spans := fake.Spans()
	require.Len(t, spans, 3)
	assert.Equal(t, "my_processing_pipeline", spans[0].Name)
	assert.Equal(t, "some text", spans[0].Input)
	assert.Empty(t, spans[0].ParentID)
	assert.Equal(t, root.ID(), spans[1].ParentID)
	assert.Equal(t, "translate", child.Name())
	assert.Empty(t, spans[2].ParentID, "WithParent overrides the context")
	assert.NotEqual(t, orphan.ID(), root.ID())
}

func TestSpanUpdateOverwrites(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	rec := agenttrace.NewRecorder(fake.Client(t))

	sp, err := rec.Start(ctx, "person_data_processing")
	require.NoError(t, err)

	records := []map[string]any{{"name": "Alice", "age": 30}}
	require.NoError(t, sp.Update(ctx, agenttrace.SpanUpdate{
		Input: records,
		Meta:  map[string]any{"n_records": 1},
	}))
	require.NoError(t, sp.Update(ctx, agenttrace.SpanUpdate{Meta: map[string]any{"status": "ok"}}))
	require.NoError(t, sp.End(ctx, "finished"))

	got, ok := fake.Span(sp.ID())
	require.True(t, ok)
	assert.JSONEq(t, `[{"age":30,"name":"Alice"}]`, got.Input)
	assert.Equal(t, "finished", got.Output)
	assert.Equal(t, map[string]any{"status": "ok"}, got.Meta)
	assert.False(t, got.EndTime.IsZero())
}

func TestSpanMetricsAppend(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	rec := agenttrace.NewRecorder(fake.Client(t))

	sp, err := rec.Start(ctx, "root")
	require.NoError(t, err)

	require.NoError(t, sp.Metric(ctx, "n_failed", 0, "Number of personas with failed summary"))
	require.NoError(t, rec.Metric(ctx, sp.ID(), "n_failed", 1, "again"))

	metrics := fake.Metrics(sp.ID())
	require.Len(t, metrics, 2)
	assert.Equal(t, []float64{0, 1}, []float64{metrics[0].Value, metrics[1].Value})
}

func TestRecorderErrors(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	rec := agenttrace.NewRecorder(fake.Client(t))

	fake.Fail(opperfake.RouteCreateSpan, http.StatusInternalServerError, 1)
	_, err := rec.Start(ctx, "root")
	require.Error(t, err)
	assert.True(t, opper.IsServerError(err))

	err = rec.Metric(ctx, "no-such-span", "x", 1, "")
	assert.True(t, opper.IsNotFound(err), "got %v", err)

	sp, err := rec.Start(ctx, "root")
	require.NoError(t, err)
	_, err = rec.Start(ctx, "bad", agenttrace.WithInput(make(chan int)))
	assert.Error(t, err)
	assert.Error(t, sp.Update(ctx, agenttrace.SpanUpdate{Output: func() {}}))
}

func TestCallRecordsTrace(t *testing.T) {
	type answer struct {
		Answer string `json:"answer"`
	}
	fake := opperfake.New(t,
		opperfake.WithCallFunc(func(req opper.CallRequest) (any, error) {
			return answer{Answer: "Jupiter"}, nil
		}),
		opperfake.WithUsage(opper.Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}))
	c := fake.Client(t)
	rec := agenttrace.NewRecorder(c)

	var traces []*agenttrace.Trace[answer]
	ctx := agenttrace.WithTracer[answer](context.Background(), agenttrace.ByCode[answer](func(tr *agenttrace.Trace[answer]) {
		traces = append(traces, tr)
	}))

	root, err := rec.Start(ctx, "session")
	require.NoError(t, err)

	comp, err := agenttrace.Call[answer](root.Context(ctx), c, opper.CallRequest{Name: "mini_kb_query", Input: "q"})
	require.NoError(t, err)
	assert.Equal(t, "Jupiter", comp.Payload.Answer)

	require.Len(t, traces, 1)
	assert.Equal(t, comp.SpanID, traces[0].RemoteSpanID())
	assert.Equal(t, "Jupiter", traces[0].Result.Answer)
	assert.JSONEq(t, `{"answer":"Jupiter"}`, string(traces[0].Raw))
	assert.Equal(t, root.ID(), fake.Calls()[0].ParentSpanID)

	fn, err := c.CreateFunction(context.Background(), opper.CreateFunctionRequest{Name: "respond"})
	require.NoError(t, err)
	fake.Fail(opperfake.RouteCallFunction, http.StatusBadGateway, 1)
	_, err = agenttrace.CallFunction[answer](ctx, c, fn, opper.FunctionCallRequest{Input: "q"})
	require.Error(t, err)
	require.Len(t, traces, 2)
	assert.Error(t, traces[1].Error)
	assert.Nil(t, traces[1].Raw)
	assert.Equal(t, "respond", traces[1].Name)
}
