/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"chainguard.dev/opperexploration/agents/schema"
)

func TestReflect(t *testing.T) {
	type nested struct {
		Value string `json:"value" jsonschema:"description=Nested value"`
	}
	type question struct {
		Name   string  `json:"name" jsonschema:"description=Name,required"`
		Count  int     `json:"count,omitempty"`
		Nested *nested `json:"nested,omitempty"`
	}

	s := schema.Reflect(&question{})
	if s == nil {
		t.Fatal("expected schema")
	}

	if len(s.Required) != 1 || s.Required[0] != "name" {
		t.Fatalf("unexpected required: %#v", s.Required)
	}

	props := s.Properties
	if props == nil {
		t.Fatal("expected properties")
	}

	name, ok := props.Get("name")
	if !ok {
		t.Fatal("missing name property")
	}
	if name.Description != "Name" {
		t.Fatalf("unexpected description: %q", name.Description)
	}

	nestedSchema, ok := props.Get("nested")
	if !ok {
		t.Fatal("missing nested property")
	}
	nestedProps := nestedSchema.Properties
	if nestedProps == nil {
		t.Fatal("expected nested properties")
	}
	valueSchema, ok := nestedProps.Get("value")
	if !ok {
		t.Fatal("missing nested value property")
	}
	if valueSchema.Description != "Nested value" {
		t.Fatalf("unexpected nested description: %q", valueSchema.Description)
	}
}

type roomDescription struct {
	RoomCount int    `json:"room_count" jsonschema:"required,description=Number of rooms"`
	View      string `json:"view" jsonschema:"required,enum=ocean,enum=city,enum=garden"`
	BedSize   string `json:"bed_size" jsonschema:"required"`
	HotelName string `json:"hotel_name" jsonschema:"required"`
	Notes     string `json:"notes,omitempty"`
}

type answer struct {
	Thoughts string   `json:"thoughts"`
	Answer   string   `json:"answer" jsonschema:"required"`
	Sources  []string `json:"sources,omitempty" jsonschema:"pattern=^https?://"`
}

func TestDomainTypeSchemas(t *testing.T) {
	tests := []struct {
		name           string
		responseType   any
		expectedSchema string // subset of the generated schema
	}{{
		name:         "room_description",
		responseType: &roomDescription{},
		expectedSchema: `{
			"type": "object",
			"required": ["room_count", "view", "bed_size", "hotel_name"],
			"properties": {
				"room_count": {"type": "integer", "description": "Number of rooms"},
				"view": {"type": "string", "enum": ["ocean", "city", "garden"]},
				"bed_size": {"type": "string"},
				"hotel_name": {"type": "string"},
				"notes": {"type": "string"}
			}
		}`,
	}, {
		name:         "answer",
		responseType: &answer{},
		expectedSchema: `{
			"type": "object",
			"required": ["answer"],
			"properties": {
				"thoughts": {"type": "string"},
				"answer": {"type": "string"},
				"sources": {"type": "array", "items": {"type": "string"}}
			}
		}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := schema.NewGenerator().JSON(tt.responseType)
			if err != nil {
				t.Fatalf("JSON: %v", err)
			}

			var expected, actual map[string]any
			if err := json.Unmarshal([]byte(tt.expectedSchema), &expected); err != nil {
				t.Fatalf("failed to parse expected schema: %v", err)
			}
			if err := json.Unmarshal(raw, &actual); err != nil {
				t.Fatalf("failed to parse actual schema: %v", err)
			}

			if err := compareSchemas(expected, actual, ""); err != nil {
				t.Errorf("Schema mismatch:\n%s\n\nActual schema:\n%s", err, string(raw))
			}
		})
	}
}

func TestReflectTypeJSON(t *testing.T) {
	raw, err := schema.ReflectTypeJSON[roomDescription]()
	if err != nil {
		t.Fatalf("ReflectTypeJSON: %v", err)
	}
	if strings.Contains(string(raw), "$ref") {
		t.Errorf("schema should be fully inlined, got %s", raw)
	}

	direct, err := schema.NewGenerator().JSON(&roomDescription{})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if string(direct) != string(raw) {
		t.Errorf("ReflectTypeJSON() = %s, want %s", raw, direct)
	}
}

// compareSchemas recursively compares expected (subset) with actual schema
func compareSchemas(expected, actual map[string]any, path string) error {
	for key, expectedVal := range expected {
		currentPath := path + "." + key
		if currentPath == "."+key {
			currentPath = key
		}

		actualVal, ok := actual[key]
		if !ok {
			return fmt.Errorf("missing key %q in actual schema", currentPath)
		}

		switch expV := expectedVal.(type) {
		case map[string]any:
			actV, ok := actualVal.(map[string]any)
			if !ok {
				return fmt.Errorf("at %q: expected object, got %T", currentPath, actualVal)
			}
			if err := compareSchemas(expV, actV, currentPath); err != nil {
				return err
			}

		case []any:
			actV, ok := actualVal.([]any)
			if !ok {
				return fmt.Errorf("at %q: expected array, got %T", currentPath, actualVal)
			}
			if len(expV) > 0 && len(actV) > 0 {
				if expObj, ok := expV[0].(map[string]any); ok {
					if actObj, ok := actV[0].(map[string]any); ok {
						if err := compareSchemas(expObj, actObj, currentPath+"[0]"); err != nil {
							return err
						}
					}
				}
			}

		case string:
			actV, ok := actualVal.(string)
			if !ok {
				return fmt.Errorf("at %q: expected string %q, got %T=%v", currentPath, expV, actualVal, actualVal)
			}
			if !strings.EqualFold(expV, actV) {
				return fmt.Errorf("at %q: expected %q, got %q", currentPath, expV, actV)
			}

		default:
			if expectedVal != actualVal {
				return fmt.Errorf("at %q: expected %v, got %v", currentPath, expectedVal, actualVal)
			}
		}
	}
	return nil
}
