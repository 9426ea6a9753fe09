// Package store provides the sharded in-memory vector store: per-shard
// storage with dimension lock-in, hash routing of ids to shards, and
// brute-force cosine top-k search merged across shards.
package store

import (
	"context"

	"go.uber.org/zap"
)

// Store is the entry point used by transports. It routes writes and point
// reads to the owning shard and fans searches out through the Aggregator.
// Only single-shard operations are linearizable; there is no cross-shard atomicity.
type Store struct {
	router     *Router
	aggregator *Aggregator
	exact      bool
	logger     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store and its shards.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithExactSearch makes every shard return all of its candidates to the
// aggregator, so query results are the exact global top-k.
func WithExactSearch(exact bool) Option {
	return func(s *Store) { s.exact = exact }
}

// New creates a store with shardCount shards.
func New(shardCount int, opts ...Option) (*Store, error) {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	router, err := NewRouter(shardCount, s.logger)
	if err != nil {
		return nil, err
	}
	s.router = router
	s.aggregator = NewAggregator(router, s.exact, s.logger)
	return s, nil
}

// Upsert inserts or overwrites the vector stored under id.
func (s *Store) Upsert(id string, vector []float32) error {
	if id == "" {
		return invalidArgument("id cannot be empty")
	}
	return s.router.ShardFor(id).Insert(id, vector)
}

// Fetch returns a copy of the vector stored under id, or ErrNotFound.
func (s *Store) Fetch(id string) ([]float32, error) {
	if id == "" {
		return nil, invalidArgument("id cannot be empty")
	}
	vec, ok := s.router.ShardFor(id).Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return vec, nil
}

// Remove deletes the record for id and reports whether one existed.
func (s *Store) Remove(id string) (bool, error) {
	if id == "" {
		return false, invalidArgument("id cannot be empty")
	}
	return s.router.ShardFor(id).Delete(id), nil
}

// Query returns up to k matches for vector across all shards, most similar first.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if err := validateVector("query vector", vector); err != nil {
		return nil, err
	}
	return s.aggregator.Query(ctx, vector, k)
}

// QueryIDs is Query reduced to the ordered ids.
func (s *Store) QueryIDs(ctx context.Context, vector []float32, k int) ([]string, error) {
	matches, err := s.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids, nil
}

// ShardStats describes one shard.
type ShardStats struct {
	Index     int `json:"index" msgpack:"index"`
	Count     int `json:"count" msgpack:"count"`
	Dimension int `json:"dimension" msgpack:"dimension"`
}

// Stats is a point-in-time view of the store. Shards are read one at a time,
// so the counts are not a consistent snapshot under concurrent writes.
type Stats struct {
	Shards []ShardStats `json:"shards" msgpack:"shards"`
	Total  int          `json:"total" msgpack:"total"`
	Exact  bool         `json:"exact_search" msgpack:"exact_search"`
}

// Stats returns per-shard record counts and dimensions.
func (s *Store) Stats() Stats {
	shards := s.router.Shards()
	st := Stats{Shards: make([]ShardStats, len(shards)), Exact: s.exact}
	for i, sh := range shards {
		n := sh.Len()
		st.Shards[i] = ShardStats{Index: sh.Number(), Count: n, Dimension: sh.Dimension()}
		st.Total += n
	}
	return st
}

// ShardCount returns the fixed number of shards.
func (s *Store) ShardCount() int {
	return s.router.ShardCount()
}
