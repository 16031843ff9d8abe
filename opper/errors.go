/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingCredential is returned when no API key is configured.
	ErrMissingCredential = errors.New("opper: missing credential: OPPER_API_KEY is not set")

	// ErrInvalidInput is returned when a call input fails local validation
	// against its declared input schema. No request is sent in that case.
	ErrInvalidInput = errors.New("opper: input does not match input schema")
)

// Error represents an error response from the Opper API with the HTTP
// status code and the server's error message.
type Error struct {
	StatusCode int
	Type       string
	Message    string
	Detail     string
	// RetryAfter is the delay requested by a Retry-After header, if any.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "opper: %s (%d)", e.Type, e.StatusCode)
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", e.Detail)
	}
	return sb.String()
}

// RetryDelay reports the server's requested delay so that retries honor
// Retry-After.
func (e *Error) RetryDelay() time.Duration { return e.RetryAfter }

// HTTPStatus returns the response status code.
func (e *Error) HTTPStatus() int { return e.StatusCode }

func statusIs(err error, code int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == code
	}
	return false
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsUnauthorized returns true if the error is a 401.
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsConflict returns true if the error is a 409.
func IsConflict(err error) bool { return statusIs(err, http.StatusConflict) }

// IsRateLimited returns true if the error is a 429 (Too Many Requests).
func IsRateLimited(err error) bool { return statusIs(err, http.StatusTooManyRequests) }

// IsServerError returns true if the error is any 5xx response.
func IsServerError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode >= 500
	}
	return false
}

// IsValidation returns true if the error is a server-side validation
// failure (400 or 422) or a local ErrInvalidInput.
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidInput) {
		return true
	}
	return statusIs(err, http.StatusBadRequest) || statusIs(err, http.StatusUnprocessableEntity)
}

// errorBody covers the error shapes the API has been seen to return:
// a flat {"type","message","detail"} object or one nested under "error".
type errorBody struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Error   *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Type = eb.Type
		apiErr.Message = eb.Message
		apiErr.Detail = detailString(eb.Detail)
		if eb.Error != nil {
			apiErr.Type = eb.Error.Type
			if apiErr.Type == "" {
				apiErr.Type = eb.Error.Code
			}
			apiErr.Message = eb.Error.Message
		}
	}

	if apiErr.Type == "" {
		apiErr.Type = http.StatusText(statusCode)
	}
	if apiErr.Message == "" && apiErr.Detail == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// detailString renders the "detail" field, which is a string for most
// errors and a list of field errors for request validation failures.
func detailString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// parseRetryAfter accepts the delay-seconds form of Retry-After. HTTP dates
// are also accepted and measured from now.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
