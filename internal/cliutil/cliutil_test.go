/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package cliutil

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"chainguard.dev/opperexploration/opper"
	"github.com/chainguard-dev/clog"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]any{"answer": "a <b>"}); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}
	want := "{\n  \"answer\": \"a <b>\"\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintJSON: got = %q, wanted = %q", got, want)
	}
	if err := PrintJSON(&buf, make(chan int)); err == nil {
		t.Error("PrintJSON(chan): got = nil error")
	}
}

func TestWithLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "DEBUG"} {
		if _, err := WithLogger(context.Background(), lvl); err != nil {
			t.Errorf("WithLogger(%q): %v", lvl, err)
		}
	}
	if _, err := WithLogger(context.Background(), "loud"); err == nil {
		t.Error("WithLogger(loud): got = nil error")
	}
}

func TestSetupMissingCredential(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPPER_API_KEY", "")
	_, _, err := Setup(context.Background())
	if !errors.Is(err, opper.ErrMissingCredential) {
		t.Errorf("Setup: got = %v, wanted = %v", err, opper.ErrMissingCredential)
	}
}

func TestSetupDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		dotenv   string // empty means no file
		wantWarn bool
	}{{
		name: "no file",
	}, {
		name:   "valid file",
		dotenv: "OPPER_LOG_LEVEL=info\n",
	}, {
		name:     "malformed file",
		dotenv:   "OPPER_LOG_LEVEL=\"info\n",
		wantWarn: true,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("OPPER_API_KEY", "sk-test")
			t.Setenv("OPPER_LOG_LEVEL", "info")
			if tc.dotenv != "" {
				if err := os.WriteFile(".env", []byte(tc.dotenv), 0o600); err != nil {
					t.Fatalf("WriteFile: %v", err)
				}
			}

			var buf bytes.Buffer
			ctx := clog.WithLogger(context.Background(), clog.New(slog.NewTextHandler(&buf, nil)))
			if _, _, err := Setup(ctx); err != nil {
				t.Fatalf("Setup: %v", err)
			}
			if got := strings.Contains(buf.String(), "ignoring .env"); got != tc.wantWarn {
				t.Errorf("warned: got = %t, wanted = %t (log %q)", got, tc.wantWarn, buf.String())
			}
		})
	}
}
