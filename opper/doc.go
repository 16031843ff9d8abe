/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package opper provides a Go client for the Opper API: remote functions,
structured calls, knowledge bases, datasets, spans and span metrics.

# Construction

The client requires a bearer credential. LoadConfig reads it from
OPPER_API_KEY and fails fast when it is unset or empty:

	cfg, err := opper.LoadConfig(ctx)
	if err != nil {
		return err
	}
	client, err := opper.NewClient(cfg)

# Structured calls

Call reflects the output schema from a Go type and decodes the payload:

	type RoomDescription struct {
		RoomCount int    `json:"room_count" jsonschema:"required"`
		View      string `json:"view" jsonschema:"required"`
		BedSize   string `json:"bed_size" jsonschema:"required"`
		HotelName string `json:"hotel_name" jsonschema:"required"`
	}

	comp, err := opper.Call[RoomDescription](ctx, client, opper.CallRequest{
		Name:         "extractRoom",
		Instructions: "Extract details about the room from the provided text",
		Input:        text,
	})

When InputSchema is set the input is validated locally before any
request is sent. Output conformance is the service's job and is not
re-checked.

# Errors

Non-2xx responses are returned as *Error. IsNotFound distinguishes a
missing resource from transport failures, which lets agents/resolve avoid
creating resources when the network is down.

# Retries

By default no request is retried. Setting Config.MaxRetries enables
exponential backoff for 429 and 5xx responses.
*/
package opper
