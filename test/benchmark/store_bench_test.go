package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/hyperjump/vecshard/internal/embedding"
	"github.com/hyperjump/vecshard/internal/store"
)

const benchDims = 384

func randomVector(r *rand.Rand) []float32 {
	v := make([]float32, benchDims)
	for i := range v {
		v[i] = r.Float32()*2 - 1
	}
	return v
}

func populatedStore(b *testing.B, shards, n int, exact bool) *store.Store {
	b.Helper()
	st, err := store.New(shards, store.WithExactSearch(exact))
	if err != nil {
		b.Fatal(err)
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		if err := st.Upsert(fmt.Sprintf("v%d", i), randomVector(r)); err != nil {
			b.Fatal(err)
		}
	}
	return st
}

func BenchmarkStoreUpsert(b *testing.B) {
	st, _ := store.New(4)
	vec := randomVector(rand.New(rand.NewSource(1)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = st.Upsert(fmt.Sprintf("v%d", i%10000), vec)
	}
}

func BenchmarkStoreQuery(b *testing.B) {
	for _, shards := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("shards=%d", shards), func(b *testing.B) {
			st := populatedStore(b, shards, 20000, false)
			q := randomVector(rand.New(rand.NewSource(2)))
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = st.Query(ctx, q, 10)
			}
		})
	}
}

func BenchmarkStoreQueryExact(b *testing.B) {
	st := populatedStore(b, 4, 20000, true)
	q := randomVector(rand.New(rand.NewSource(2)))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = st.Query(ctx, q, 10)
	}
}

func BenchmarkCosineSimilarity(b *testing.B) {
	r := rand.New(rand.NewSource(3))
	x, y := randomVector(r), randomVector(r)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.CosineSimilarity(x, y)
	}
}

func BenchmarkDFTEmbedder_Embed(b *testing.B) {
	e := embedding.NewDFTEmbedder(embedding.DefaultDFTDimensions)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark statement text for embedding")
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(benchDims)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark statement text for embedding")
	}
}
