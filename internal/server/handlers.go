package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/storage"
	"github.com/hyperjump/kensaku/internal/vector"
)

type searchRequest struct {
	Query         string    `json:"query,omitempty"`
	Vector        []float32 `json:"vector,omitempty"`
	TopK          int       `json:"top_k,omitempty"`
	Type          *string   `json:"type,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Difficulty    *string   `json:"difficulty,omitempty"`
	MinSimilarity float64   `json:"min_similarity,omitempty"`
}

type searchResponse struct {
	Results []vector.Match `json:"results"`
	Count   int            `json:"count"`
	Backend string         `json:"backend"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if (req.Query == "") == (len(req.Vector) == 0) {
		s.respondError(w, http.StatusBadRequest, "exactly one of query or vector is required")
		return
	}
	opts := search.Options{
		TopK:          req.TopK,
		Type:          req.Type,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		MinSimilarity: req.MinSimilarity,
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))

	var (
		results []vector.Match
		err     error
	)
	if req.Query != "" {
		results, err = s.search.SearchText(r.Context(), req.Query, opts)
	} else {
		results, err = s.search.Search(r.Context(), req.Vector, opts)
	}
	if err != nil {
		if errors.Is(err, embedding.ErrDimensionMismatch) || errors.Is(err, search.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := searchResponse{Results: results, Count: len(results)}
	if b, err := s.backends.Backend(); err == nil {
		resp.Backend = b.Type()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := map[string]any{
		"state": s.backends.State().String(),
	}
	if reason := s.backends.Reason(); reason != nil {
		resp["reason"] = reason.Error()
	}

	backend, err := s.backends.Backend()
	if err == nil {
		stats, err := backend.Stats(ctx)
		if err != nil {
			s.logger.Error("status: backend stats failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["backend"] = backend.Type()
		resp["vectors"] = stats
	}

	if s.sessions != nil {
		n, err := s.sessions.Count(ctx)
		if err != nil {
			s.logger.Error("status: count sessions failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["sessions"] = n
		if sized, ok := s.sessions.(interface{ SizeBytes() (int64, error) }); ok {
			if size, err := sized.SizeBytes(); err == nil {
				resp["session_db_bytes"] = size
			}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := s.sessions.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec := &storage.SessionRecord{ID: chi.URLParam(r, "id"), Data: body.Data}
	if err := s.sessions.Put(r.Context(), rec); err != nil {
		if errors.Is(err, storage.ErrInvalidID) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("store session failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete session request", zap.String("id", id))
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.logger.Error("delete session failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
