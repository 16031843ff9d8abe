/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPayload is returned by Decode when there is nothing to decode.
var ErrEmptyPayload = errors.New("empty payload")

// ExtractJSON returns the JSON document embedded in text. Model output
// sometimes arrives fenced in a ```json block or surrounded by prose; the
// first fenced block wins, otherwise the trimmed text is returned with any
// bare fence markers removed.
func ExtractJSON(text string) string {
	var buf bytes.Buffer
	inBlock, found := false, false
	for line := range strings.SplitSeq(text, "\n") {
		switch {
		case !inBlock && line == "```json":
			inBlock, found = true, true
			continue
		case inBlock && line == "```":
			return strings.TrimSpace(buf.String())
		case inBlock:
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
		}
	}
	if found {
		// Unterminated block.
		return strings.TrimSpace(buf.String())
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Extract pulls the JSON document out of text with ExtractJSON and
// unmarshals it into T.
func Extract[T any](text string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &out); err != nil {
		return out, err
	}
	return out, nil
}

// Decode unmarshals a structured payload into T. Payloads are normally a
// JSON value already; when the payload is a JSON string whose content is
// itself JSON (possibly fenced), the inner document is decoded instead,
// unless T is a string.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return out, ErrEmptyPayload
	}

	err := json.Unmarshal(trimmed, &out)
	if err == nil || trimmed[0] != '"' {
		return out, err
	}

	var inner string
	if json.Unmarshal(trimmed, &inner) != nil {
		return out, err
	}
	out, ierr := Extract[T](inner)
	if ierr != nil {
		return out, fmt.Errorf("decode string payload: %w", ierr)
	}
	return out, nil
}
