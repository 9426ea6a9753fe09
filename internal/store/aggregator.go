package store

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Match is one query hit with its cosine similarity to the query vector.
type Match struct {
	ID    string  `json:"id" msgpack:"id"`
	Score float64 `json:"score" msgpack:"score"`
}

// Aggregator fans a query out to every shard and merges the local top-k
// results into a global top-k.
//
// In the default two-phase mode each shard only contributes its own top k and
// vectors outside it are never reconsidered. Exact mode asks each shard for all
// of its candidates instead.
type Aggregator struct {
	router *Router
	exact  bool
	logger *zap.Logger
}

// NewAggregator creates an aggregator over the router's shards.
func NewAggregator(router *Router, exact bool, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{router: router, exact: exact, logger: logger}
}

// Query returns up to k matches across all shards, highest similarity first.
// The first shard failure is returned and the remaining shards are skipped.
func (a *Aggregator) Query(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, invalidArgument("k must be positive")
	}
	shards := a.router.Shards()
	perShard := make([][]Match, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			localK := k
			if a.exact {
				// at least 1 so the shard still validates the query dimension
				localK = max(shard.Len(), 1)
			}
			ids, err := shard.Search(query, localK)
			if err != nil {
				return fmt.Errorf("shard %d: %w", shard.Number(), err)
			}
			matches := make([]Match, 0, len(ids))
			for _, id := range ids {
				vec, ok := shard.Get(id)
				if !ok {
					// deleted between search and refetch
					continue
				}
				matches = append(matches, Match{ID: id, Score: CosineSimilarity(query, vec)})
			}
			perShard[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, m := range perShard {
		total += len(m)
	}
	all := make([]Match, 0, total)
	for _, m := range perShard {
		all = append(all, m...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if k < len(all) {
		all = all[:k]
	}
	a.logger.Debug("query merged",
		zap.Int("shards", len(shards)),
		zap.Int("candidates", total),
		zap.Int("returned", len(all)),
		zap.Bool("exact", a.exact))
	return all, nil
}
