/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package resolve_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"chainguard.dev/opperexploration/agents/resolve"
	"chainguard.dev/opperexploration/opper"
	"chainguard.dev/opperexploration/opper/opperfake"
)

var respondSpec = resolve.FunctionSpec{
	Name:         "respond",
	Description:  "Answers questions",
	Instructions: "Answer the question",
}

func TestEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	fns := resolve.NewFunctions(fake.Client(t))

	first, outcome, err := fns.Ensure(ctx, respondSpec)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if outcome != resolve.NotFound {
		t.Errorf("first outcome = %v, want %v", outcome, resolve.NotFound)
	}

	second, outcome, err := fns.Ensure(ctx, respondSpec)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if outcome != resolve.Found {
		t.Errorf("second outcome = %v, want %v", outcome, resolve.Found)
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %s != %s", first.ID, second.ID)
	}
	if got := fake.Count(opperfake.RouteCreateFunction); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
}

func TestEnsureCreatesOnceWhenLookupAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	fake.Fail(opperfake.RouteGetFunctionByName, http.StatusNotFound, -1)

	fn, outcome, err := resolve.Function(ctx, fake.Client(t), respondSpec)
	if err != nil {
		t.Fatalf("Function: %v", err)
	}
	if outcome != resolve.NotFound {
		t.Errorf("outcome = %v, want %v", outcome, resolve.NotFound)
	}
	if fn.Name != "respond" {
		t.Errorf("Name = %q", fn.Name)
	}
	if got := fake.Count(opperfake.RouteCreateFunction); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
}

func TestTransportErrorDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	fake.Fail(opperfake.RouteGetKnowledgeByName, http.StatusInternalServerError, -1)

	_, outcome, err := resolve.KnowledgeBase(ctx, fake.Client(t), "support")
	if !errors.Is(err, resolve.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	if outcome != resolve.TransportError {
		t.Errorf("outcome = %v, want %v", outcome, resolve.TransportError)
	}
	if !opper.IsServerError(err) {
		t.Errorf("underlying status lost: %v", err)
	}
	if got := fake.Count(opperfake.RouteCreateKnowledge); got != 0 {
		t.Errorf("creates = %d, want 0", got)
	}
}

func TestCreateOnAnyError(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	fake.Fail(opperfake.RouteGetKnowledgeByName, http.StatusInternalServerError, -1)

	kb, outcome, err := resolve.KnowledgeBase(ctx, fake.Client(t), "support", resolve.WithCreateOnAnyError())
	if err != nil {
		t.Fatalf("KnowledgeBase: %v", err)
	}
	if outcome != resolve.NotFound || kb.Name != "support" {
		t.Errorf("got (%v, %+v)", outcome, kb)
	}
	if got := fake.Count(opperfake.RouteGetKnowledgeByName); got != 1 {
		t.Errorf("lookups = %d, want 1", got)
	}
	if got := fake.Count(opperfake.RouteCreateKnowledge); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
}

func TestCreateFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	fake.Fail(opperfake.RouteCreateFunction, http.StatusBadRequest, 1)

	_, outcome, err := resolve.Function(ctx, fake.Client(t), respondSpec)
	if err == nil {
		t.Fatal("expected an error")
	}
	if outcome != resolve.NotFound {
		t.Errorf("outcome = %v, want %v", outcome, resolve.NotFound)
	}
	if !strings.Contains(err.Error(), "failed to create or retrieve function 'respond'") {
		t.Errorf("error = %q", err)
	}
}

func TestConcurrentEnsureCreatesOnce(t *testing.T) {
	ctx := context.Background()
	fake := opperfake.New(t)
	fns := resolve.NewFunctions(fake.Client(t))

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn, _, err := fns.Ensure(ctx, respondSpec)
			if err != nil {
				t.Errorf("Ensure: %v", err)
				return
			}
			ids[i] = fn.ID
		}()
	}
	wg.Wait()

	if got := fake.Count(opperfake.RouteCreateFunction); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Errorf("IDs differ: %v", ids)
			break
		}
	}
}

func TestResolverWithCustomPredicate(t *testing.T) {
	errGone := errors.New("gone")
	var creates atomic.Int32
	r := resolve.New[string]("widget", func(context.Context, string) (string, error) {
		return "", errGone
	}, resolve.WithNotFound(func(err error) bool { return errors.Is(err, errGone) }))

	got, outcome, err := r.Resolve(context.Background(), "w", func(context.Context) (string, error) {
		creates.Add(1)
		return "made", nil
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "made" || outcome != resolve.NotFound || creates.Load() != 1 {
		t.Errorf("got (%q, %v), creates=%d", got, outcome, creates.Load())
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[resolve.Outcome]string{
		resolve.Found:          "found",
		resolve.NotFound:       "not_found",
		resolve.TransportError: "transport_error",
		resolve.Outcome(9):     "Outcome(9)",
	} {
		if got := o.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
