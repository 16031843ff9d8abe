/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package cliutil holds the start-up sequence shared by the example
// programs and opperctl.
package cliutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chainguard.dev/opperexploration/opper"
	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
)

// RunFunc is the body of an example program.
type RunFunc func(ctx context.Context, client *opper.Client, w io.Writer) error

// Main loads .env and the environment, builds a client and calls run with
// stdout. It exits the process on any error.
func Main(run RunFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx, client, err := Setup(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "setting up: %v", err)
	}
	if err := run(ctx, client, os.Stdout); err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
}

// Setup reads .env (if present) and the process environment, installs a
// clog logger at OPPER_LOG_LEVEL in ctx, and builds a client.
func Setup(ctx context.Context, opts ...opper.Option) (context.Context, *opper.Client, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		clog.WarnContextf(ctx, "ignoring .env: %v", err)
	}

	cfg, err := opper.LoadConfig(ctx)
	if err != nil {
		return ctx, nil, err
	}
	ctx, err = WithLogger(ctx, cfg.LogLevel)
	if err != nil {
		return ctx, nil, err
	}
	client, err := opper.NewClient(cfg, opts...)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, client, nil
}

// WithLogger installs a text logger on stderr at the named level
// ("debug", "info", "warn" or "error").
func WithLogger(ctx context.Context, level string) (context.Context, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return ctx, fmt.Errorf("log level %q: %w", level, err)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return clog.WithLogger(ctx, clog.New(h)), nil
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
