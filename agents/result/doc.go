/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result decodes structured payloads returned by model calls.

Payloads normally arrive as JSON values and Decode unmarshals them
directly. Some models return the document as a string, occasionally fenced
in markdown:

	"```json\n{\"room_count\": 3}\n```"

Decode unwraps that form too, using ExtractJSON:

	room, err := result.Decode[RoomDescription](resp.JSONPayload)

Extract and ExtractJSON work on plain text and are useful when a model
answers in prose with an embedded JSON block.
*/
package result
