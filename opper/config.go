/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DefaultBaseURL is the public Opper API endpoint.
const DefaultBaseURL = "https://api.opper.ai"

// Config holds the settings needed to construct a Client.
type Config struct {
	// APIKey is the bearer credential. It is required; an unset or empty
	// value is rejected with ErrMissingCredential.
	APIKey string `env:"OPPER_API_KEY"`

	// BaseURL is the root URL of the API (e.g. "https://api.opper.ai").
	BaseURL string `env:"OPPER_BASE_URL,default=https://api.opper.ai"`

	// Timeout applies to individual API requests.
	Timeout time.Duration `env:"OPPER_TIMEOUT,default=60s"`

	// MaxRetries is the number of retries for rate limited or 5xx
	// responses. Zero keeps the fail-fast behavior.
	MaxRetries int `env:"OPPER_MAX_RETRIES,default=0"`

	// RetryBaseBackoff and RetryMaxBackoff bound the exponential backoff
	// used when MaxRetries > 0.
	RetryBaseBackoff time.Duration `env:"OPPER_RETRY_BASE_BACKOFF,default=1s"`
	RetryMaxBackoff  time.Duration `env:"OPPER_RETRY_MAX_BACKOFF,default=30s"`

	// LogLevel is read by entry points to configure the context logger.
	LogLevel string `env:"OPPER_LOG_LEVEL,default=info"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig(ctx context.Context) (Config, error) {
	return LoadConfigWith(ctx, envconfig.OsLookuper())
}

// LoadConfigWith reads the configuration using the given lookuper, which
// lets tests supply a map instead of the process environment.
func LoadConfigWith(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return Config{}, fmt.Errorf("opper: processing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingCredential
	}
	if c.BaseURL == "" {
		return fmt.Errorf("opper: BaseURL is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("opper: OPPER_MAX_RETRIES cannot be negative")
	}
	return nil
}
