// Package embedding turns free text into fixed-length vectors. The store is
// agnostic to the algorithm; it only relies on every call of one Embedder
// returning vectors of the same length.
package embedding

import (
	"context"
	"errors"
)

// ErrEmptyText is returned by every Embedder for empty input.
var ErrEmptyText = errors.New("statement cannot be empty")

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// embedEach implements EmbedBatch for embedders without a batched path.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
