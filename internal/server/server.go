// Package server provides the HTTP API: a thin adapter translating REST
// requests to the store's upsert, fetch, remove and query operations.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/vecshard/internal/config"
	"github.com/hyperjump/vecshard/internal/embedding"
	"github.com/hyperjump/vecshard/internal/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server is the HTTP server for the vecshard API.
type Server struct {
	store     *store.Store
	embedder  embedding.Embedder
	provider  string
	config    *config.ServerConfig
	searchCfg atomic.Pointer[config.SearchConfig]
	limiter   *rate.Limiter
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	st *store.Store,
	embedder embedding.Embedder,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:    st,
		embedder: embedder,
		provider: cfg.Embedding.Provider,
		config:   &cfg.Server,
		logger:   logger,
	}
	searchCfg := cfg.Search
	s.searchCfg.Store(&searchCfg)
	if cfg.Server.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RequestsPerSecond), cfg.Server.Burst)
	}
	return s
}

// UpdateSearchConfig swaps the query defaults used by subsequent requests.
func (s *Server) UpdateSearchConfig(sc config.SearchConfig) {
	s.searchCfg.Store(&sc)
}

// Handler builds the router. Exposed for tests and embedding in other servers.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}
		r.Post("/vectors", s.handleUpsert)
		r.Get("/vectors/search", s.handleSearchQuery)
		r.Get("/vectors/{id}", s.handleGetVector)
		r.Delete("/vectors/{id}", s.handleDeleteVector)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server",
		zap.String("addr", addr),
		zap.Int("shards", s.store.ShardCount()),
		zap.String("embedding_provider", s.provider))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
