/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	sjs "github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL is the resource name used when compiling an inline schema. It
// is never fetched.
const schemaURL = "inline://schema.json"

// Compile parses a JSON schema document.
func Compile(raw json.RawMessage) (*sjs.Schema, error) {
	c := sjs.NewCompiler()
	c.Draft = sjs.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// Validate checks v against the JSON schema document raw. v may be any
// value that encodes to JSON (a struct, a map, a string); it is validated
// in its encoded form, so struct tags apply.
func Validate(raw json.RawMessage, v any) error {
	s, err := Compile(raw)
	if err != nil {
		return err
	}

	doc, err := toJSONValue(v)
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return describe(err)
	}
	return nil
}

// toJSONValue round-trips v through encoding/json so the validator sees
// plain maps, slices and json.Number values.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return doc, nil
}

// describe flattens a validation error tree into a single readable line
// listing the leaf causes, e.g. `/question: missing properties: 'question'`.
func describe(err error) error {
	ve, ok := err.(*sjs.ValidationError)
	if !ok {
		return err
	}
	var leaves []string
	var walk func(*sjs.ValidationError)
	walk = func(e *sjs.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			leaves = append(leaves, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return fmt.Errorf("%s", strings.Join(leaves, "; "))
}
