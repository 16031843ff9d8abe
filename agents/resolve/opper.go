/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package resolve

import (
	"context"

	"chainguard.dev/opperexploration/opper"
	"github.com/chainguard-dev/clog"
)

// FunctionStore is the subset of *opper.Client used to resolve functions.
type FunctionStore interface {
	GetFunctionByName(ctx context.Context, name string) (*opper.Function, error)
	CreateFunction(ctx context.Context, req opper.CreateFunctionRequest) (*opper.Function, error)
}

// KnowledgeStore is the subset of *opper.Client used to resolve knowledge
// bases.
type KnowledgeStore interface {
	GetKnowledgeBaseByName(ctx context.Context, name string) (*opper.KnowledgeBase, error)
	CreateKnowledgeBase(ctx context.Context, req opper.CreateKnowledgeBaseRequest) (*opper.KnowledgeBase, error)
}

// FunctionSpec is the definition used when a function has to be created.
// An existing function is returned unchanged even if its definition
// differs.
type FunctionSpec = opper.CreateFunctionRequest

// Functions resolves functions by name.
type Functions struct {
	store FunctionStore
	r     *Resolver[*opper.Function]
}

// NewFunctions returns a function resolver backed by store.
func NewFunctions(store FunctionStore, opts ...Option) *Functions {
	return &Functions{
		store: store,
		r:     New[*opper.Function]("function", store.GetFunctionByName, opts...),
	}
}

// Ensure returns the function named spec.Name, creating it from spec if
// it does not exist.
func (f *Functions) Ensure(ctx context.Context, spec FunctionSpec) (*opper.Function, Outcome, error) {
	fn, outcome, err := f.r.Resolve(ctx, spec.Name, func(ctx context.Context) (*opper.Function, error) {
		return f.store.CreateFunction(ctx, spec)
	})
	if err != nil {
		return nil, outcome, err
	}
	switch outcome {
	case Found:
		clog.InfoContextf(ctx, "Function '%s' already exists with ID: %s", fn.Name, fn.ID)
	case NotFound:
		clog.InfoContextf(ctx, "Created function '%s' with ID: %s", fn.Name, fn.ID)
	}
	return fn, outcome, nil
}

// KnowledgeBases resolves knowledge bases by name.
type KnowledgeBases struct {
	store KnowledgeStore
	r     *Resolver[*opper.KnowledgeBase]
}

// NewKnowledgeBases returns a knowledge base resolver backed by store.
func NewKnowledgeBases(store KnowledgeStore, opts ...Option) *KnowledgeBases {
	return &KnowledgeBases{
		store: store,
		r:     New[*opper.KnowledgeBase]("knowledge base", store.GetKnowledgeBaseByName, opts...),
	}
}

// Ensure returns the knowledge base called name, creating it if needed.
func (k *KnowledgeBases) Ensure(ctx context.Context, name string) (*opper.KnowledgeBase, Outcome, error) {
	kb, outcome, err := k.r.Resolve(ctx, name, func(ctx context.Context) (*opper.KnowledgeBase, error) {
		return k.store.CreateKnowledgeBase(ctx, opper.CreateKnowledgeBaseRequest{Name: name})
	})
	if err != nil {
		return nil, outcome, err
	}
	switch outcome {
	case Found:
		clog.InfoContextf(ctx, "Knowledge base '%s' already exists with ID: %s", kb.Name, kb.ID)
	case NotFound:
		clog.InfoContextf(ctx, "Created knowledge base '%s' with ID: %s", kb.Name, kb.ID)
	}
	return kb, outcome, nil
}

// Function resolves a single function. Use NewFunctions when several
// goroutines may resolve the same name.
func Function(ctx context.Context, store FunctionStore, spec FunctionSpec, opts ...Option) (*opper.Function, Outcome, error) {
	return NewFunctions(store, opts...).Ensure(ctx, spec)
}

// KnowledgeBase resolves a single knowledge base.
func KnowledgeBase(ctx context.Context, store KnowledgeStore, name string, opts ...Option) (*opper.KnowledgeBase, Outcome, error) {
	return NewKnowledgeBases(store, opts...).Ensure(ctx, name)
}
