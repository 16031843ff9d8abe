/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package opperfake serves an in-memory imitation of the Opper API over
// httptest for use in tests. It keeps functions, knowledge bases, datasets,
// spans and span metrics in maps, records every structured call, and lets
// tests script call payloads, override query ranking and inject failures
// per route.
package opperfake

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"chainguard.dev/opperexploration/opper"
)

// Route patterns, usable with Count and Fail.
const (
	RouteCall               = "POST /v2/call"
	RouteCreateFunction     = "POST /v2/functions"
	RouteListFunctions      = "GET /v2/functions"
	RouteGetFunction        = "GET /v2/functions/{id}"
	RouteGetFunctionByName  = "GET /v2/functions/by-name/{name}"
	RouteUpdateFunction     = "PATCH /v2/functions/{id}"
	RouteDeleteFunction     = "DELETE /v2/functions/{id}"
	RouteCallFunction       = "POST /v2/functions/{id}/call"
	RouteCreateKnowledge    = "POST /v2/knowledge"
	RouteGetKnowledgeByName = "GET /v2/knowledge/by-name/{name}"
	RouteDeleteKnowledge    = "DELETE /v2/knowledge/{id}"
	RouteAddKnowledge       = "POST /v2/knowledge/{id}/add"
	RouteQueryKnowledge     = "POST /v2/knowledge/{id}/query"
	RouteListDataset        = "GET /v2/datasets/{id}/entries"
	RouteCreateDatasetEntry = "POST /v2/datasets/{id}"
	RouteDeleteDatasetEntry = "DELETE /v2/datasets/{id}/entries/{entry_id}"
	RouteCreateSpan         = "POST /v2/spans"
	RouteGetSpan            = "GET /v2/spans/{id}"
	RouteUpdateSpan         = "PATCH /v2/spans/{id}"
	RouteDeleteSpan         = "DELETE /v2/spans/{id}"
	RouteCreateSpanMetric   = "POST /v2/spans/{id}/metrics"
	RouteListSpanMetrics    = "GET /v2/spans/{id}/metrics"
)

// APIKey is the credential the fake accepts unless overridden.
const APIKey = "test-key"

// CallFunc produces the json_payload of a structured call. Returning a
// json.RawMessage sends it verbatim; any other value is JSON encoded. An
// *opper.Error is answered with its status code.
type CallFunc func(req opper.CallRequest) (any, error)

// QueryFunc replaces the built-in knowledge ranking. Its results are sent
// as-is, without applying top_k.
type QueryFunc func(kbID string, req opper.QueryRequest) []opper.QueryResult

// Server is the fake. Create one with New.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	apiKey string

	functions   map[string]*opper.Function
	functionIDs map[string]string // name -> id
	kbs         map[string]*opper.KnowledgeBase
	kbIDs       map[string]string // name -> id
	knowledge   map[string][]opper.KnowledgeEntry
	datasets    map[string][]opper.DatasetEntry
	spans       map[string]*opper.Span
	spanOrder   []string
	metrics     map[string][]opper.SpanMetric
	calls       []opper.CallRequest

	counts map[string]int
	faults map[string]fault

	callFunc  CallFunc
	queryFunc QueryFunc
	usage     *opper.Usage
}

type fault struct {
	status    int
	remaining int // <0: unlimited
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey changes the accepted bearer credential.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithCallFunc scripts structured call payloads.
func WithCallFunc(f CallFunc) Option {
	return func(s *Server) { s.callFunc = f }
}

// WithQueryFunc overrides knowledge query results.
func WithQueryFunc(f QueryFunc) Option {
	return func(s *Server) { s.queryFunc = f }
}

// WithUsage attaches token usage to every call response.
func WithUsage(u opper.Usage) Option {
	return func(s *Server) { s.usage = &u }
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		apiKey:      APIKey,
		functions:   map[string]*opper.Function{},
		functionIDs: map[string]string{},
		kbs:         map[string]*opper.KnowledgeBase{},
		kbIDs:       map[string]string{},
		knowledge:   map[string][]opper.KnowledgeEntry{},
		datasets:    map[string][]opper.DatasetEntry{},
		spans:       map[string]*opper.Span{},
		metrics:     map[string][]opper.SpanMetric{},
		counts:      map[string]int{},
		faults:      map[string]fault{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	for pattern, h := range map[string]http.HandlerFunc{
		RouteCall:               s.handleCall,
		RouteCreateFunction:     s.handleCreateFunction,
		RouteListFunctions:      s.handleListFunctions,
		RouteGetFunction:        s.handleGetFunction,
		RouteGetFunctionByName:  s.handleGetFunctionByName,
		RouteUpdateFunction:     s.handleUpdateFunction,
		RouteDeleteFunction:     s.handleDeleteFunction,
		RouteCallFunction:       s.handleCallFunction,
		RouteCreateKnowledge:    s.handleCreateKnowledge,
		RouteGetKnowledgeByName: s.handleGetKnowledgeByName,
		RouteDeleteKnowledge:    s.handleDeleteKnowledge,
		RouteAddKnowledge:       s.handleAddKnowledge,
		RouteQueryKnowledge:     s.handleQueryKnowledge,
		RouteListDataset:        s.handleListDataset,
		RouteCreateDatasetEntry: s.handleCreateDatasetEntry,
		RouteDeleteDatasetEntry: s.handleDeleteDatasetEntry,
		RouteCreateSpan:         s.handleCreateSpan,
		RouteGetSpan:            s.handleGetSpan,
		RouteUpdateSpan:         s.handleUpdateSpan,
		RouteDeleteSpan:         s.handleDeleteSpan,
		RouteCreateSpanMetric:   s.handleCreateSpanMetric,
		RouteListSpanMetrics:    s.handleListSpanMetrics,
	} {
		mux.Handle(pattern, s.wrap(pattern, h))
	}
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Config returns a client configuration pointing at the fake.
func (s *Server) Config() opper.Config {
	return opper.Config{
		APIKey:  s.apiKey,
		BaseURL: s.URL,
		Timeout: 10 * time.Second,
	}
}

// Client returns a client for the fake.
func (s *Server) Client(t testing.TB, opts ...opper.Option) *opper.Client {
	t.Helper()
	c, err := opper.NewClient(s.Config(), opts...)
	if err != nil {
		t.Fatalf("opper.NewClient: %v", err)
	}
	return c
}

// SetCallFunc replaces the call handler of a running fake.
func (s *Server) SetCallFunc(f CallFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callFunc = f
}

// Fail makes the next n requests to route fail with status. n < 0 fails
// every request until Recover is called.
func (s *Server) Fail(route string, status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[route] = fault{status: status, remaining: n}
}

// Recover removes any fault on route.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, route)
}

// Count returns the number of requests received on route, including
// failed ones.
func (s *Server) Count(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[route]
}

// Calls returns the structured calls received, in order. Function calls
// are included, converted to the equivalent CallRequest.
func (s *Server) Calls() []opper.CallRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Function returns a stored function by name.
func (s *Server) Function(name string) (opper.Function, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.functionIDs[name]
	if !ok {
		return opper.Function{}, false
	}
	return *s.functions[id], true
}

// KnowledgeEntries returns the entries of a knowledge base in insertion
// order.
func (s *Server) KnowledgeEntries(kbID string) []opper.KnowledgeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.knowledge[kbID])
}

// DatasetEntries returns the entries of a dataset.
func (s *Server) DatasetEntries(datasetID string) []opper.DatasetEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.datasets[datasetID])
}

// Span returns a stored span.
func (s *Server) Span(id string) (opper.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spans[id]
	if !ok {
		return opper.Span{}, false
	}
	return *sp, true
}

// Spans returns all stored spans in creation order.
func (s *Server) Spans() []opper.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]opper.Span, 0, len(s.spanOrder))
	for _, id := range s.spanOrder {
		if sp, ok := s.spans[id]; ok {
			out = append(out, *sp)
		}
	}
	return out
}

// Metrics returns the metrics written to a span, in order.
func (s *Server) Metrics(spanID string) []opper.SpanMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.metrics[spanID])
}

func (s *Server) wrap(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[route]++
		f, faulted := s.faults[route]
		if faulted {
			switch {
			case f.remaining > 1:
				f.remaining--
				s.faults[route] = f
			case f.remaining == 1:
				delete(s.faults, route)
			}
		}
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+s.apiKey {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or missing api key")
			return
		}
		if faulted {
			writeError(w, f.status, "injected", http.StatusText(f.status))
			return
		}
		h(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]string{"type": typ, "message": msg})
}

func writeAPIError(w http.ResponseWriter, err error) {
	var apiErr *opper.Error
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, apiErr.Type, apiErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, what, key string) {
	writeError(w, http.StatusNotFound, "not_found", what+" "+key+" not found")
}
