/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opper

import (
	"encoding/json"
	"time"
)

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// FewShotCountKey is the function configuration key controlling how many
// dataset entries are injected as examples on each invocation.
const FewShotCountKey = "invocation.few_shot.count"

// Function is a named prompt and schema definition hosted by the service.
type Function struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Instructions  string          `json:"instructions,omitempty"`
	InputSchema   json.RawMessage `json:"input_schema,omitempty"`
	OutputSchema  json.RawMessage `json:"output_schema,omitempty"`
	Configuration map[string]any  `json:"configuration,omitempty"`
	DatasetID     string          `json:"dataset_id,omitempty"`
	Revision      int             `json:"revision_id,omitempty"`
}

// CreateFunctionRequest is the payload for creating a function.
type CreateFunctionRequest struct {
	Name          string          `json:"name" yaml:"name"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	Instructions  string          `json:"instructions" yaml:"instructions"`
	InputSchema   json.RawMessage `json:"input_schema,omitempty" yaml:"-"`
	OutputSchema  json.RawMessage `json:"output_schema,omitempty" yaml:"-"`
	Model         Models          `json:"model,omitempty" yaml:"-"`
	Configuration map[string]any  `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// UpdateFunctionRequest replaces the given fields of a function. Nil and
// empty fields are left untouched.
type UpdateFunctionRequest struct {
	Description   *string         `json:"description,omitempty"`
	Instructions  *string         `json:"instructions,omitempty"`
	InputSchema   json.RawMessage `json:"input_schema,omitempty"`
	OutputSchema  json.RawMessage `json:"output_schema,omitempty"`
	Configuration map[string]any  `json:"configuration,omitempty"`
}

// FunctionCallRequest invokes an existing function by id.
type FunctionCallRequest struct {
	Input        any               `json:"input,omitempty"`
	ParentSpanID string            `json:"parent_span_id,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Examples     []Example         `json:"examples,omitempty"`
}

// ---------------------------------------------------------------------------
// Structured calls
// ---------------------------------------------------------------------------

// Model names one model to try, with optional provider options such as
// temperature.
type Model struct {
	Name    string         `json:"name"`
	Options map[string]any `json:"options,omitempty"`
}

// Models is an ordered fallback list: the service tries each model in
// order and the first success wins.
type Models []Model

// MarshalJSON encodes a single model without options as its bare name and
// anything else as the ordered list.
func (m Models) MarshalJSON() ([]byte, error) {
	if len(m) == 1 && len(m[0].Options) == 0 {
		return json.Marshal(m[0].Name)
	}
	return json.Marshal([]Model(m))
}

// UnmarshalJSON accepts both the bare-name and the list encodings.
func (m *Models) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*m = Models{{Name: name}}
		return nil
	}
	var list []Model
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*m = list
	return nil
}

// Example is a worked input/output pair that steers a call.
type Example struct {
	Input   any    `json:"input"`
	Output  any    `json:"output"`
	Comment string `json:"comment,omitempty"`
}

// CallRequest is the payload of a structured call.
type CallRequest struct {
	Name          string            `json:"name"`
	Instructions  string            `json:"instructions,omitempty"`
	InputSchema   json.RawMessage   `json:"input_schema,omitempty"`
	OutputSchema  json.RawMessage   `json:"output_schema,omitempty"`
	Input         any               `json:"input,omitempty"`
	Model         Models            `json:"model,omitempty"`
	Examples      []Example         `json:"examples,omitempty"`
	ParentSpanID  string            `json:"parent_span_id,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	Configuration map[string]any    `json:"configuration,omitempty"`
}

// Usage reports token accounting for a call when the service provides it.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// CallResponse is the raw response of a structured call.
type CallResponse struct {
	SpanID      string          `json:"span_id"`
	Message     string          `json:"message,omitempty"`
	JSONPayload json.RawMessage `json:"json_payload,omitempty"`
	Cached      bool            `json:"cached,omitempty"`
	Usage       *Usage          `json:"usage,omitempty"`
}

// ---------------------------------------------------------------------------
// Knowledge bases
// ---------------------------------------------------------------------------

// KnowledgeBase is a remote store supporting semantic query with metadata
// filters.
type KnowledgeBase struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	Count          int       `json:"count,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// CreateKnowledgeBaseRequest is the payload for creating a knowledge base.
type CreateKnowledgeBaseRequest struct {
	Name           string `json:"name"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// KnowledgeEntry is one document in a knowledge base. Key is unique per
// knowledge base: adding an existing key overwrites it.
type KnowledgeEntry struct {
	Key      string         `json:"key"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FilterOperation is the comparison of a query filter. Only equality is
// supported by the demos.
type FilterOperation string

// OpEqual matches entries whose metadata field equals the value.
const OpEqual FilterOperation = "="

// Filter is one metadata predicate. A query's filters are combined with
// AND.
type Filter struct {
	Field     string          `json:"field"`
	Operation FilterOperation `json:"operation"`
	Value     any             `json:"value"`
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Operation: OpEqual, Value: value}
}

// QueryRequest is a semantic query over a knowledge base.
type QueryRequest struct {
	Query   string   `json:"query"`
	TopK    int      `json:"top_k,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
}

// QueryResult is one ranked match.
type QueryResult struct {
	ID       string         `json:"id,omitempty"`
	Key      string         `json:"key,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// ---------------------------------------------------------------------------
// Datasets
// ---------------------------------------------------------------------------

// DatasetEntry is a stored input/output example in a function's dataset.
type DatasetEntry struct {
	ID       string `json:"id"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	Expected string `json:"expected,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// CreateDatasetEntryRequest is the payload for adding a dataset entry.
type CreateDatasetEntryRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Expected string `json:"expected,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// PageMeta describes a paginated listing.
type PageMeta struct {
	TotalCount int `json:"total_count"`
}

// DatasetEntries is one page of dataset entries.
type DatasetEntries struct {
	Meta PageMeta       `json:"meta"`
	Data []DatasetEntry `json:"data"`
}

// Functions is one page of functions.
type Functions struct {
	Meta PageMeta   `json:"meta"`
	Data []Function `json:"data"`
}

// ListOptions pages through list endpoints. Zero values use the service
// defaults.
type ListOptions struct {
	Offset int
	Limit  int
}

// ---------------------------------------------------------------------------
// Spans and metrics
// ---------------------------------------------------------------------------

// Span is a node in a trace tree.
type Span struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"trace_id,omitempty"`
	ParentID  string         `json:"parent_id,omitempty"`
	Name      string         `json:"name"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	StartTime time.Time      `json:"start_time,omitzero"`
	EndTime   time.Time      `json:"end_time,omitzero"`
}

// CreateSpanRequest is the payload for creating a span.
type CreateSpanRequest struct {
	Name      string         `json:"name"`
	ParentID  string         `json:"parent_id,omitempty"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	StartTime time.Time      `json:"start_time,omitzero"`
}

// UpdateSpanRequest overwrites the given span fields wholesale. Fields are
// not merged with their previous values.
type UpdateSpanRequest struct {
	Name    string         `json:"name,omitempty"`
	Input   string         `json:"input,omitempty"`
	Output  string         `json:"output,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	EndTime time.Time      `json:"end_time,omitzero"`
}

// SpanMetric is a numeric annotation of a span. Metrics are append-only:
// writing the same dimension twice stores two metrics.
type SpanMetric struct {
	ID        string    `json:"id,omitempty"`
	SpanID    string    `json:"span_id,omitempty"`
	Dimension string    `json:"dimension"`
	Value     float64   `json:"value"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// CreateSpanMetricRequest is the payload for attaching a metric to a span.
type CreateSpanMetricRequest struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	Comment   string  `json:"comment,omitempty"`
}
