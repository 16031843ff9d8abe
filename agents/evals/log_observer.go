/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"sync/atomic"

	"github.com/chainguard-dev/clog"
)

// LogObserver writes verdicts to the clog logger of a context, tagged
// with the namespace. Failures are logged as warnings.
type LogObserver struct {
	log   *clog.Logger
	count atomic.Int64
}

// NewLogObserver returns a LogObserver for namespace.
func NewLogObserver(ctx context.Context, namespace string) *LogObserver {
	return &LogObserver{log: clog.FromContext(ctx).With("namespace", namespace)}
}

func (l *LogObserver) Fail(msg string) { l.log.Warnf("eval failed: %s", msg) }

func (l *LogObserver) Log(msg string) { l.log.Info(msg) }

func (l *LogObserver) Grade(score float64, reasoning string) {
	l.log.With("score", score).Infof("graded: %s", reasoning)
}

func (l *LogObserver) Increment() { l.count.Add(1) }

func (l *LogObserver) Total() int64 { return l.count.Load() }

// Tee fans every verdict out to all observers. Total is reported by the
// first one.
func Tee(first Observer, rest ...Observer) Observer {
	return tee(append([]Observer{first}, rest...))
}

type tee []Observer

func (t tee) Fail(msg string) {
	for _, o := range t {
		o.Fail(msg)
	}
}

func (t tee) Log(msg string) {
	for _, o := range t {
		o.Log(msg)
	}
}

func (t tee) Grade(score float64, reasoning string) {
	for _, o := range t {
		o.Grade(score, reasoning)
	}
}

func (t tee) Increment() {
	for _, o := range t {
		o.Increment()
	}
}

func (t tee) Total() int64 { return t[0].Total() }
