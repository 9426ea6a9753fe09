package models

import (
	"fmt"

	"github.com/hyperjump/vecshard/internal/store"
)

// SearchQuery asks for the K nearest records to a statement or a raw vector.
// K of 0 means the server default.
type SearchQuery struct {
	Statement string    `json:"statement,omitempty" msgpack:"statement,omitempty"`
	Vector    []float32 `json:"vector,omitempty" msgpack:"vector,omitempty"`
	K         int       `json:"k,omitempty" msgpack:"k,omitempty"`
}

// Validate checks that a query input is present and k is not negative.
func (q *SearchQuery) Validate() error {
	if q.Statement == "" && len(q.Vector) == 0 {
		return fmt.Errorf("statement is required")
	}
	if q.Statement != "" && len(q.Vector) > 0 {
		return fmt.Errorf("statement and vector are mutually exclusive")
	}
	if q.K < 0 {
		return fmt.Errorf("k must be positive")
	}
	return nil
}

// SearchResponse lists the global top-k, most similar first.
type SearchResponse struct {
	TopK      []string      `json:"top_k" msgpack:"top_k"`
	Matches   []store.Match `json:"matches" msgpack:"matches"`
	K         int           `json:"k" msgpack:"k"`
	QueryTime int64         `json:"query_time_ms" msgpack:"query_time_ms"`
}

// NewSearchResponse builds a response from ordered matches.
func NewSearchResponse(matches []store.Match, k int, queryTimeMS int64) *SearchResponse {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	if matches == nil {
		matches = []store.Match{}
	}
	return &SearchResponse{TopK: ids, Matches: matches, K: k, QueryTime: queryTimeMS}
}

// EmbeddingInfo describes the configured embedder.
type EmbeddingInfo struct {
	Provider   string `json:"provider" msgpack:"provider"`
	Dimensions int    `json:"dimensions" msgpack:"dimensions"`
	// CacheEntries is nil when the embedder has no statement cache.
	CacheEntries *int `json:"cache_entries,omitempty" msgpack:"cache_entries,omitempty"`
}

// StatusResponse is the shape of GET /api/v1/status.
type StatusResponse struct {
	ShardCount int           `json:"shard_count" msgpack:"shard_count"`
	Total      int           `json:"total" msgpack:"total"`
	Store      store.Stats   `json:"store" msgpack:"store"`
	Embedding  EmbeddingInfo `json:"embedding" msgpack:"embedding"`
	DefaultK   int           `json:"default_k" msgpack:"default_k"`
	MaxK       int           `json:"max_k" msgpack:"max_k"`
}
