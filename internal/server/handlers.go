package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/vecshard/internal/embedding"
	"github.com/hyperjump/vecshard/internal/models"
	"github.com/hyperjump/vecshard/internal/store"
	"go.uber.org/zap"
)

// statusFor maps store and embedding errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidArgument),
		errors.Is(err, store.ErrDimensionMismatch),
		errors.Is(err, embedding.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	fields := []zap.Field{zap.String("request_id", RequestID(r.Context())), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, fields...)
	} else {
		s.logger.Debug(msg, fields...)
	}
	if r.Context().Err() == context.DeadlineExceeded {
		// middleware.Timeout writes the 504 once the handler returns
		return
	}
	s.respondError(w, r, status, err.Error())
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var input models.VectorInput
	if err := decode(r, &input); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	vec := input.Vector
	if input.Statement != "" {
		var err error
		if vec, err = s.embedder.Embed(r.Context(), input.Statement); err != nil {
			s.fail(w, r, "embedding failed", err)
			return
		}
	}
	if err := s.store.Upsert(input.ID, vec); err != nil {
		s.fail(w, r, "upsert failed", err)
		return
	}
	s.respond(w, r, http.StatusOK, models.UpsertResponse{ID: input.ID, Status: "upserted", Dimension: len(vec)})
}

// idParam returns the {id} path segment. chi routes on RawPath when the
// request carries escapes the default encoding would not produce (e.g. %2F).
func idParam(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(id); err == nil {
			return u
		}
	}
	return id
}

func (s *Server) handleGetVector(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	vec, err := s.store.Fetch(id)
	if err != nil {
		s.fail(w, r, "fetch failed", err)
		return
	}
	s.respond(w, r, http.StatusOK, models.VectorResponse{ID: id, Vector: vec})
}

func (s *Server) handleDeleteVector(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	removed, err := s.store.Remove(id)
	if err != nil {
		s.fail(w, r, "delete failed", err)
		return
	}
	if !removed {
		s.respondError(w, r, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}
	s.respond(w, r, http.StatusOK, models.StatusMessage{Status: "deleted"})
}

// handleSearchQuery serves GET /vectors/search?k=&statement=.
func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	q := models.SearchQuery{Statement: r.URL.Query().Get("statement")}
	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, http.StatusBadRequest, "k must be an integer")
			return
		}
		if k <= 0 {
			s.respondError(w, r, http.StatusBadRequest, "k must be positive")
			return
		}
		q.K = k
	}
	s.runSearch(w, r, &q)
}

// handleSearch serves POST /search with a statement or a raw vector.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q models.SearchQuery
	if err := decode(r, &q); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	s.runSearch(w, r, &q)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, q *models.SearchQuery) {
	if err := q.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	k := s.searchCfg.Load().ClampK(q.K)
	vec := q.Vector
	if q.Statement != "" {
		var err error
		if vec, err = s.embedder.Embed(r.Context(), q.Statement); err != nil {
			s.fail(w, r, "embedding failed", err)
			return
		}
	}
	start := time.Now()
	matches, err := s.store.Query(r.Context(), vec, k)
	if err != nil {
		s.fail(w, r, "search failed", err)
		return
	}
	s.logger.Debug("search",
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("k", k),
		zap.Int("results", len(matches)))
	s.respond(w, r, http.StatusOK, models.NewSearchResponse(matches, k, time.Since(start).Milliseconds()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	sc := s.searchCfg.Load()
	info := models.EmbeddingInfo{Provider: s.provider, Dimensions: s.embedder.Dimensions()}
	if c, ok := s.embedder.(interface{ CacheLen() int }); ok {
		n := c.CacheLen()
		info.CacheEntries = &n
	}
	s.respond(w, r, http.StatusOK, models.StatusResponse{
		ShardCount: s.store.ShardCount(),
		Total:      stats.Total,
		Store:      stats,
		Embedding:  info,
		DefaultK:   sc.DefaultK,
		MaxK:       sc.MaxK,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, models.StatusMessage{Status: "ok"})
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.respond(w, r, status, models.ErrorResponse{Error: message})
}
