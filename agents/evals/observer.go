/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"maps"
	"path"
	"slices"
	"sync"

	"chainguard.dev/opperexploration/agents/agenttrace"
)

// Observer receives the verdict of evaluating one or more traces.
type Observer interface {
	// Fail marks the evaluation as failed. Call it at most once per trace.
	Fail(string)
	// Log records a message. May be called any number of times.
	Log(string)
	// Grade assigns a score in [0, 1] with reasoning. Call it at most once
	// per trace.
	Grade(score float64, reasoning string)
	// Increment is called each time a trace is evaluated.
	Increment()
	// Total returns the number of evaluated traces.
	Total() int64
}

// ObservableTraceCallback evaluates a completed trace against an Observer.
type ObservableTraceCallback[T any] func(Observer, *agenttrace.Trace[T])

// Inject binds obs to callback, producing a TraceCallback for use with
// agenttrace.ByCode.
func Inject[T any](obs Observer, callback ObservableTraceCallback[T]) agenttrace.TraceCallback[T] {
	return func(trace *agenttrace.Trace[T]) {
		obs.Increment()
		callback(obs, trace)
	}
}

// NamespacedObserver arranges observers in a tree keyed by path, e.g.
// "/extract_room/room_count_valid".
type NamespacedObserver[T Observer] struct {
	name     string
	inner    T
	factory  func(string) T
	mu       sync.Mutex
	children map[string]*NamespacedObserver[T]
}

// NewNamespacedObserver creates the root ("/") of a namespace tree.
func NewNamespacedObserver[T Observer](factory func(string) T) *NamespacedObserver[T] {
	return &NamespacedObserver[T]{
		name:     "/",
		inner:    factory("/"),
		factory:  factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
}

func (n *NamespacedObserver[T]) Fail(msg string) { n.inner.Fail(msg) }
func (n *NamespacedObserver[T]) Log(msg string) { n.inner.Log(msg) }
func (n *NamespacedObserver[T]) Grade(score float64, reasoning string) { n.inner.Grade(score, reasoning) }
func (n *NamespacedObserver[T]) Increment() { n.inner.Increment() }
func (n *NamespacedObserver[T]) Total() int64 { return n.inner.Total() }

// Name returns the full path of this node.
func (n *NamespacedObserver[T]) Name() string { return n.name }

// Inner returns the observer at this node.
func (n *NamespacedObserver[T]) Inner() T { return n.inner }

// Child returns the named child, creating it on first use.
func (n *NamespacedObserver[T]) Child(name string) *NamespacedObserver[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if child, ok := n.children[name]; ok {
		return child
	}
	p := path.Join(n.name, name)
	child := &NamespacedObserver[T]{
		name:     p,
		inner:    n.factory(p),
		factory:  n.factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
	n.children[name] = child
	return child
}

// Walk visits this node and then its descendants depth-first, children in
// name order.
func (n *NamespacedObserver[T]) Walk(visitor func(string, T)) {
	visitor(n.name, n.inner)

	n.mu.Lock()
	names := slices.Sorted(maps.Keys(n.children))
	children := make([]*NamespacedObserver[T], 0, len(names))
	for _, name := range names {
		children = append(children, n.children[name])
	}
	n.mu.Unlock()

	for _, child := range children {
		child.Walk(visitor)
	}
}
