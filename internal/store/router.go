package store

import (
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Router owns a fixed set of shards and maps each id to exactly one of them.
// The shard count is set at construction and never changes; there is no rebalancing.
type Router struct {
	shards []*Shard
}

// NewRouter creates shardCount empty shards.
func NewRouter(shardCount int, logger *zap.Logger) (*Router, error) {
	if shardCount <= 0 {
		return nil, invalidArgument("shard count must be positive, got %d", shardCount)
	}
	shards := make([]*Shard, shardCount)
	for i := range shards {
		shards[i] = NewShard(i, logger)
	}
	return &Router{shards: shards}, nil
}

// Route returns the index of the shard owning id.
func (r *Router) Route(id string) int {
	return int(xxhash.Sum64String(id) % uint64(len(r.shards)))
}

// ShardFor returns the shard owning id.
func (r *Router) ShardFor(id string) *Shard {
	return r.shards[r.Route(id)]
}

// Shards returns every shard in a stable order, for fan-out queries.
func (r *Router) Shards() []*Shard {
	return slices.Clone(r.shards)
}

// ShardCount returns the number of shards.
func (r *Router) ShardCount() int {
	return len(r.shards)
}
