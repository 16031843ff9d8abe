/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package resolve implements get-or-create for named remote resources.
//
// A lookup either finds the resource, reports that it does not exist, or
// fails for some other reason. Only the second case leads to creation: a
// network failure or an auth error during lookup is returned to the caller
// instead of being mistaken for absence.
//
// Concurrent callers in the same process that resolve the same name share
// a single lookup and create. Separate processes can still race between
// lookup and create; the service answers the loser with a conflict, which
// is returned as a creation failure.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/opperexploration/opper"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/singleflight"
)

// ErrTransport marks a lookup that failed for a reason other than the
// resource being absent.
var ErrTransport = errors.New("lookup failed")

// Outcome classifies how a lookup went.
type Outcome int

const (
	// Found means the resource already existed and was returned as-is.
	Found Outcome = iota
	// NotFound means the lookup reported absence and the resource was
	// created (or creation was attempted, if an error is returned).
	NotFound
	// TransportError means the lookup failed and nothing was created.
	TransportError
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case TransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// LookupFunc fetches a resource by name.
type LookupFunc[T any] func(ctx context.Context, name string) (T, error)

// CreateFunc creates the resource being resolved.
type CreateFunc[T any] func(ctx context.Context) (T, error)

type options struct {
	createOnAnyError bool
	isNotFound       func(error) bool
}

// Option configures a Resolver.
type Option func(*options)

// WithCreateOnAnyError treats every lookup failure as absence, so that a
// failed lookup always leads to a create attempt.
func WithCreateOnAnyError() Option {
	return func(o *options) { o.createOnAnyError = true }
}

// WithNotFound replaces the predicate deciding whether a lookup error
// means the resource is absent. The default is opper.IsNotFound.
func WithNotFound(pred func(error) bool) Option {
	return func(o *options) { o.isNotFound = pred }
}

// Resolver resolves resources of one kind. It is safe for concurrent use.
type Resolver[T any] struct {
	kind   string
	lookup LookupFunc[T]
	opts   options
	group  singleflight.Group
}

// New creates a resolver. kind names the resource in logs and errors.
func New[T any](kind string, lookup LookupFunc[T], opts ...Option) *Resolver[T] {
	o := options{isNotFound: opper.IsNotFound}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver[T]{kind: kind, lookup: lookup, opts: o}
}

type resolved[T any] struct {
	value   T
	outcome Outcome
}

// Resolve looks name up and, if it does not exist, calls create. Callers
// joining an in-flight resolution of the same name receive its result,
// including its outcome; their own create is not called. The in-flight
// resolution runs under the context of the caller that started it.
func (r *Resolver[T]) Resolve(ctx context.Context, name string, create CreateFunc[T]) (T, Outcome, error) {
	v, err, _ := r.group.Do(name, func() (any, error) {
		value, outcome, err := r.resolve(ctx, name, create)
		return resolved[T]{value: value, outcome: outcome}, err
	})
	res := v.(resolved[T])
	return res.value, res.outcome, err
}

func (r *Resolver[T]) resolve(ctx context.Context, name string, create CreateFunc[T]) (T, Outcome, error) {
	log := clog.FromContext(ctx).With(r.kind, name)

	got, err := r.lookup(ctx, name)
	if err == nil {
		return got, Found, nil
	}
	if !r.opts.isNotFound(err) && !r.opts.createOnAnyError {
		var zero T
		return zero, TransportError, fmt.Errorf("%w: %s '%s': %w", ErrTransport, r.kind, name, err)
	}

	log.Debugf("lookup of %s '%s' returned %v, creating", r.kind, name, err)
	created, err := create(ctx)
	if err != nil {
		var zero T
		return zero, NotFound, fmt.Errorf("failed to create or retrieve %s '%s': %w", r.kind, name, err)
	}
	return created, NotFound, nil
}
