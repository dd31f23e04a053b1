package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/vector"
)

// Handlers for the vector service protocol, served from the selected backend.

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req vector.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	backend, ok := s.backend(w)
	if !ok {
		return
	}
	records := make([]vector.Record, len(req.Vectors))
	for i, v := range req.Vectors {
		if v.ID == "" {
			s.respondError(w, http.StatusBadRequest, "vector id is required")
			return
		}
		records[i] = vector.FromWire(v)
	}
	n, err := backend.Upsert(r.Context(), records)
	if err != nil {
		s.respondBackendError(w, "upsert", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"upsertedCount": n})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req vector.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Vector) == 0 {
		s.respondError(w, http.StatusBadRequest, "vector is required")
		return
	}
	backend, ok := s.backend(w)
	if !ok {
		return
	}
	matches, err := backend.Query(r.Context(), req.Vector, req.TopK, req.Filter)
	if err != nil {
		s.respondBackendError(w, "query", err)
		return
	}
	if !req.IncludeMetadata {
		for i := range matches {
			matches[i].Metadata = nil
		}
	}
	s.respondJSON(w, http.StatusOK, vector.QueryResponse{Results: matches})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req vector.IDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	backend, ok := s.backend(w)
	if !ok {
		return
	}
	records, err := backend.Fetch(r.Context(), req.IDs)
	if err != nil {
		s.respondBackendError(w, "fetch", err)
		return
	}
	resp := vector.FetchResponse{Vectors: make([]vector.WireVector, len(records))}
	for i, rec := range records {
		resp.Vectors[i] = vector.ToWire(rec)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req vector.IDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	backend, ok := s.backend(w)
	if !ok {
		return
	}
	if err := backend.Delete(r.Context(), req.IDs); err != nil {
		s.respondBackendError(w, "delete", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"deletedCount": len(req.IDs)})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	backend, ok := s.backend(w)
	if !ok {
		return
	}
	stats, err := backend.Stats(r.Context())
	if err != nil {
		s.respondBackendError(w, "info", err)
		return
	}
	s.respondJSON(w, http.StatusOK, vector.NewInfoResponse(stats))
}

// backend resolves the selected backend or writes a 500.
func (s *Server) backend(w http.ResponseWriter) (vector.Backend, bool) {
	b, err := s.backends.Backend()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return b, true
}

func (s *Server) respondBackendError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, embedding.ErrDimensionMismatch) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("vector operation failed", zap.String("op", op), zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}
