/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"chainguard.dev/opperexploration/agents/evals"
	"github.com/chainguard-dev/clog"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	ctx := clog.WithLogger(context.Background(), clog.New(slog.NewTextHandler(&buf, nil)))

	obs := evals.NewLogObserver(ctx, "/extract/room_count")
	obs.Increment()
	obs.Increment()
	obs.Fail("room_count: got = 0")
	obs.Grade(0.5, "half right")
	obs.Log("note")

	if got := obs.Total(); got != 2 {
		t.Errorf("Total: got = %d, wanted = 2", got)
	}
	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		"eval failed: room_count: got = 0",
		"graded: half right",
		"score=0.5",
		"namespace=/extract/room_count",
		"msg=note",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestTee(t *testing.T) {
	a, b := &testObserver{}, &testObserver{}
	obs := evals.Tee(a, b)

	obs.Increment()
	obs.Fail("bad")
	obs.Log("hello")
	obs.Grade(1, "ok")

	for _, o := range []*testObserver{a, b} {
		if len(o.failures) != 1 || o.count != 1 || len(o.grades) != 1 {
			t.Errorf("observer: failures = %v, count = %d, grades = %v", o.failures, o.count, o.grades)
		}
	}
	a.count = 7
	if got := obs.Total(); got != 7 {
		t.Errorf("Total: got = %d, wanted = 7 (from the first observer)", got)
	}
}
