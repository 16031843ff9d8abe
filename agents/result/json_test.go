/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{{
		name:  "fenced block with prose",
		input: "Here you go:\n```json\n{\"view\": \"ocean\"}\n```\nAnything else?",
		want:  `{"view": "ocean"}`,
	}, {
		name:  "first fenced block wins",
		input: "```json\n{\"a\": 1}\n```\n```json\n{\"b\": 2}\n```",
		want:  `{"a": 1}`,
	}, {
		name:  "empty block",
		input: "```json\n```",
		want:  "",
	}, {
		name:  "unterminated block",
		input: "```json\n{\"incomplete\": true",
		want:  `{"incomplete": true`,
	}, {
		name:  "plain json with whitespace",
		input: "\n   {\"plain\": \"json\"}\n  ",
		want:  `{"plain": "json"}`,
	}, {
		name:  "bare fences on one line",
		input: "```{\"x\": 1}```",
		want:  `{"x": 1}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

type room struct {
	RoomCount int    `json:"room_count"`
	View      string `json:"view"`
	BedSize   string `json:"bed_size"`
	HotelName string `json:"hotel_name"`
}

func TestDecode(t *testing.T) {
	want := room{RoomCount: 3, View: "ocean", BedSize: "king-sized", HotelName: "The Grand Hotel"}
	doc := `{"room_count":3,"view":"ocean","bed_size":"king-sized","hotel_name":"The Grand Hotel"}`
	quoted, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	fenced, err := json.Marshal("```json\n" + doc + "\n```")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for name, raw := range map[string]json.RawMessage{
		"object":        json.RawMessage(doc),
		"string":        quoted,
		"fenced string": fenced,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode[room](raw)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeString(t *testing.T) {
	got, err := Decode[string](json.RawMessage(`"{\"not\": \"unwrapped\"}"`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := `{"not": "unwrapped"}`; got != want {
		t.Errorf("Decode() = %q, want %q", got, want)
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null"), json.RawMessage("  ")} {
		if _, err := Decode[room](raw); !errors.Is(err, ErrEmptyPayload) {
			t.Errorf("Decode(%q) error = %v, want ErrEmptyPayload", raw, err)
		}
	}
}

func TestDecodeMismatch(t *testing.T) {
	if _, err := Decode[room](json.RawMessage(`{"room_count": "three"}`)); err == nil {
		t.Error("Decode() succeeded on a mistyped field")
	}
	if _, err := Decode[room](json.RawMessage(`"not json at all"`)); err == nil {
		t.Error("Decode() succeeded on a non-JSON string")
	}
}

func TestExtract(t *testing.T) {
	got, err := Extract[map[string]int]("Result:\n```json\n{\"count\": 2}\n```")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff(map[string]int{"count": 2}, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}
