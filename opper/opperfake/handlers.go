/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package opperfake

import (
	"cmp"
	"encoding/json"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"chainguard.dev/opperexploration/opper"
	"github.com/google/uuid"
)

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req opper.CallRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	s.respondCall(w, req)
}

func (s *Server) handleCallFunction(w http.ResponseWriter, r *http.Request) {
	var req opper.FunctionCallRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	fn, ok := s.functions[r.PathValue("id")]
	var call opper.CallRequest
	if ok {
		call = opper.CallRequest{
			Name:          fn.Name,
			Instructions:  fn.Instructions,
			InputSchema:   fn.InputSchema,
			OutputSchema:  fn.OutputSchema,
			Input:         req.Input,
			Examples:      req.Examples,
			ParentSpanID:  req.ParentSpanID,
			Tags:          req.Tags,
			Configuration: fn.Configuration,
		}
	}
	s.mu.Unlock()
	if !ok {
		notFound(w, "function", r.PathValue("id"))
		return
	}
	s.respondCall(w, call)
}

func (s *Server) respondCall(w http.ResponseWriter, req opper.CallRequest) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	f, usage := s.callFunc, s.usage
	span := s.newSpanLocked(req.Name, req.ParentSpanID)
	span.Input = asString(req.Input)
	s.mu.Unlock()

	resp := opper.CallResponse{SpanID: span.ID, Usage: usage}
	if f != nil {
		v, err := f(req)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		switch v := v.(type) {
		case nil:
		case json.RawMessage:
			resp.JSONPayload = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal", err.Error())
				return
			}
			resp.JSONPayload = b
			if str, ok := v.(string); ok {
				resp.Message = str
			}
		}
	}

	s.mu.Lock()
	span.Output = string(resp.JSONPayload)
	span.EndTime = time.Now()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// newSpanLocked stores a new span. Callers hold s.mu.
func (s *Server) newSpanLocked(name, parentID string) *opper.Span {
	sp := &opper.Span{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Name:      name,
		StartTime: time.Now(),
	}
	if parent, ok := s.spans[parentID]; ok && parentID != "" {
		sp.TraceID = parent.TraceID
	} else {
		sp.TraceID = uuid.NewString()
	}
	s.spans[sp.ID] = sp
	s.spanOrder = append(s.spanOrder, sp.ID)
	return sp
}

func asString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func page(r *http.Request, total int) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	start := min(max(offset, 0), total)
	return start, min(start+limit, total)
}

// Functions.

func (s *Server) handleCreateFunction(w http.ResponseWriter, r *http.Request) {
	var req opper.CreateFunctionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.functionIDs[req.Name]; exists {
		writeError(w, http.StatusConflict, "conflict", "function "+req.Name+" already exists")
		return
	}
	fn := &opper.Function{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Instructions:  req.Instructions,
		InputSchema:   req.InputSchema,
		OutputSchema:  req.OutputSchema,
		Configuration: req.Configuration,
		DatasetID:     uuid.NewString(),
		Revision:      1,
	}
	s.functions[fn.ID] = fn
	s.functionIDs[fn.Name] = fn.ID
	s.datasets[fn.DatasetID] = nil
	writeJSON(w, http.StatusCreated, fn)
}

func (s *Server) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	all := make([]opper.Function, 0, len(s.functions))
	for _, fn := range s.functions {
		all = append(all, *fn)
	}
	s.mu.Unlock()
	slices.SortFunc(all, func(a, b opper.Function) int { return cmp.Compare(a.Name, b.Name) })

	start, end := page(r, len(all))
	writeJSON(w, http.StatusOK, opper.Functions{
		Meta: opper.PageMeta{TotalCount: len(all)},
		Data: all[start:end],
	})
}

func (s *Server) handleGetFunction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.functions[r.PathValue("id")]
	if !ok {
		notFound(w, "function", r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, fn)
}

func (s *Server) handleGetFunctionByName(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.functionIDs[r.PathValue("name")]
	if !ok {
		notFound(w, "function", r.PathValue("name"))
		return
	}
	writeJSON(w, http.StatusOK, s.functions[id])
}

func (s *Server) handleUpdateFunction(w http.ResponseWriter, r *http.Request) {
	var req opper.UpdateFunctionRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.functions[r.PathValue("id")]
	if !ok {
		notFound(w, "function", r.PathValue("id"))
		return
	}
	if req.Description != nil {
		fn.Description = *req.Description
	}
	if req.Instructions != nil {
		fn.Instructions = *req.Instructions
	}
	if len(req.InputSchema) > 0 {
		fn.InputSchema = req.InputSchema
	}
	if len(req.OutputSchema) > 0 {
		fn.OutputSchema = req.OutputSchema
	}
	if req.Configuration != nil {
		fn.Configuration = req.Configuration
	}
	fn.Revision++
	writeJSON(w, http.StatusOK, fn)
}

func (s *Server) handleDeleteFunction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.functions[r.PathValue("id")]
	if !ok {
		notFound(w, "function", r.PathValue("id"))
		return
	}
	delete(s.functions, fn.ID)
	delete(s.functionIDs, fn.Name)
	delete(s.datasets, fn.DatasetID)
	w.WriteHeader(http.StatusNoContent)
}

// Knowledge bases.

func (s *Server) handleCreateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req opper.CreateKnowledgeBaseRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.kbIDs[req.Name]; exists {
		writeError(w, http.StatusConflict, "conflict", "knowledge base "+req.Name+" already exists")
		return
	}
	kb := &opper.KnowledgeBase{
		ID:             uuid.NewString(),
		Name:           req.Name,
		EmbeddingModel: cmp.Or(req.EmbeddingModel, "text-embedding-3-large"),
		CreatedAt:      time.Now().UTC(),
	}
	s.kbs[kb.ID] = kb
	s.kbIDs[kb.Name] = kb.ID
	writeJSON(w, http.StatusCreated, kb)
}

func (s *Server) handleGetKnowledgeByName(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.kbIDs[r.PathValue("name")]
	if !ok {
		notFound(w, "knowledge base", r.PathValue("name"))
		return
	}
	writeJSON(w, http.StatusOK, s.kbs[id])
}

func (s *Server) handleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[r.PathValue("id")]
	if !ok {
		notFound(w, "knowledge base", r.PathValue("id"))
		return
	}
	delete(s.kbs, kb.ID)
	delete(s.kbIDs, kb.Name)
	delete(s.knowledge, kb.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddKnowledge(w http.ResponseWriter, r *http.Request) {
	var entry opper.KnowledgeEntry
	if !decode(w, r, &entry) {
		return
	}
	if entry.Key == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "key is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[r.PathValue("id")]
	if !ok {
		notFound(w, "knowledge base", r.PathValue("id"))
		return
	}
	entries := s.knowledge[kb.ID]
	if i := slices.IndexFunc(entries, func(e opper.KnowledgeEntry) bool { return e.Key == entry.Key }); i >= 0 {
		entries[i] = entry
	} else {
		entries = append(entries, entry)
	}
	s.knowledge[kb.ID] = entries
	kb.Count = len(entries)
	writeJSON(w, http.StatusOK, map[string]string{"key": entry.Key})
}

func (s *Server) handleQueryKnowledge(w http.ResponseWriter, r *http.Request) {
	var req opper.QueryRequest
	if !decode(w, r, &req) {
		return
	}
	for _, f := range req.Filters {
		if f.Operation != opper.OpEqual {
			writeError(w, http.StatusBadRequest, "validation_error", "unsupported filter operation "+string(f.Operation))
			return
		}
	}

	s.mu.Lock()
	kbID := r.PathValue("id")
	_, ok := s.kbs[kbID]
	entries := slices.Clone(s.knowledge[kbID])
	qf := s.queryFunc
	s.mu.Unlock()
	if !ok {
		notFound(w, "knowledge base", kbID)
		return
	}

	if qf != nil {
		writeJSON(w, http.StatusOK, qf(kbID, req))
		return
	}
	writeJSON(w, http.StatusOK, rank(entries, req))
}

// rank scores entries by the fraction of query terms they contain, keeps
// those matching every filter, and applies top_k.
func rank(entries []opper.KnowledgeEntry, req opper.QueryRequest) []opper.QueryResult {
	terms := strings.Fields(strings.ToLower(req.Query))
	out := make([]opper.QueryResult, 0, len(entries))
	for _, e := range entries {
		if !matches(e, req.Filters) {
			continue
		}
		content := strings.ToLower(e.Content)
		var hits int
		for _, t := range terms {
			if strings.Contains(content, strings.Trim(t, "?.,!")) {
				hits++
			}
		}
		var score float64
		if len(terms) > 0 {
			score = float64(hits) / float64(len(terms))
		}
		out = append(out, opper.QueryResult{
			ID:       e.Key,
			Key:      e.Key,
			Content:  e.Content,
			Metadata: e.Metadata,
			Score:    score,
		})
	}
	slices.SortStableFunc(out, func(a, b opper.QueryResult) int { return cmp.Compare(b.Score, a.Score) })
	if req.TopK > 0 && len(out) > req.TopK {
		out = out[:req.TopK]
	}
	return out
}

func matches(e opper.KnowledgeEntry, filters []opper.Filter) bool {
	for _, f := range filters {
		v, ok := e.Metadata[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// Datasets.

func (s *Server) handleListDataset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	entries, ok := s.datasets[r.PathValue("id")]
	entries = slices.Clone(entries)
	s.mu.Unlock()
	if !ok {
		notFound(w, "dataset", r.PathValue("id"))
		return
	}
	start, end := page(r, len(entries))
	data := entries[start:end]
	if data == nil {
		data = []opper.DatasetEntry{}
	}
	writeJSON(w, http.StatusOK, opper.DatasetEntries{
		Meta: opper.PageMeta{TotalCount: len(entries)},
		Data: data,
	})
}

func (s *Server) handleCreateDatasetEntry(w http.ResponseWriter, r *http.Request) {
	var req opper.CreateDatasetEntryRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	entries, ok := s.datasets[id]
	if !ok {
		notFound(w, "dataset", id)
		return
	}
	e := opper.DatasetEntry{
		ID:       uuid.NewString(),
		Input:    req.Input,
		Output:   req.Output,
		Expected: req.Expected,
		Comment:  req.Comment,
	}
	s.datasets[id] = append(entries, e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteDatasetEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, entryID := r.PathValue("id"), r.PathValue("entry_id")
	entries := s.datasets[id]
	i := slices.IndexFunc(entries, func(e opper.DatasetEntry) bool { return e.ID == entryID })
	if i < 0 {
		notFound(w, "dataset entry", entryID)
		return
	}
	s.datasets[id] = slices.Delete(entries, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

// Spans.

func (s *Server) handleCreateSpan(w http.ResponseWriter, r *http.Request) {
	var req opper.CreateSpanRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.newSpanLocked(req.Name, req.ParentID)
	sp.Input = req.Input
	sp.Output = req.Output
	sp.Meta = req.Meta
	if !req.StartTime.IsZero() {
		sp.StartTime = req.StartTime
	}
	writeJSON(w, http.StatusCreated, sp)
}

func (s *Server) handleGetSpan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spans[r.PathValue("id")]
	if !ok {
		notFound(w, "span", r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleUpdateSpan(w http.ResponseWriter, r *http.Request) {
	var req opper.UpdateSpanRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spans[r.PathValue("id")]
	if !ok {
		notFound(w, "span", r.PathValue("id"))
		return
	}
	if req.Name != "" {
		sp.Name = req.Name
	}
	if req.Input != "" {
		sp.Input = req.Input
	}
	if req.Output != "" {
		sp.Output = req.Output
	}
	if req.Meta != nil {
		sp.Meta = req.Meta
	}
	if !req.EndTime.IsZero() {
		sp.EndTime = req.EndTime
	}
	writeJSON(w, http.StatusOK, sp)
}

func (s *Server) handleDeleteSpan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.spans[id]; !ok {
		notFound(w, "span", id)
		return
	}
	delete(s.spans, id)
	delete(s.metrics, id)
	s.spanOrder = slices.DeleteFunc(s.spanOrder, func(v string) bool { return v == id })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSpanMetric(w http.ResponseWriter, r *http.Request) {
	var req opper.CreateSpanMetricRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Dimension == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "dimension is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.spans[id]; !ok {
		notFound(w, "span", id)
		return
	}
	m := opper.SpanMetric{
		ID:        uuid.NewString(),
		SpanID:    id,
		Dimension: req.Dimension,
		Value:     req.Value,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	s.metrics[id] = append(s.metrics[id], m)
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListSpanMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.spans[id]; !ok {
		notFound(w, "span", id)
		return
	}
	data := slices.Clone(s.metrics[id])
	if data == nil {
		data = []opper.SpanMetric{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}
