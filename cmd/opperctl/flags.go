/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// splitPairs turns key=value flags into a map of strings.
func splitPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q: want key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// parsePairs is splitPairs with typed values: numbers and booleans keep
// their type, everything else is a string.
func parsePairs(pairs []string) (map[string]any, error) {
	m, err := splitPairs(pairs)
	if err != nil || m == nil {
		return nil, err
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = scalar(v)
	}
	return out, nil
}

func scalar(v string) any {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// inputValue decodes s as JSON when it is valid JSON and otherwise passes
// it through as a plain string. A leading @ reads the value from a file.
func inputValue(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	if name, ok := strings.CutPrefix(s, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		s = string(b)
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	return s, nil
}

// schemaValue reads a JSON schema given inline or as @file.
func schemaValue(s string) (json.RawMessage, error) {
	v, err := inputValue(s)
	if err != nil || v == nil {
		return nil, err
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("schema is not valid JSON")
	}
	return raw, nil
}
