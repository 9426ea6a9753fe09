package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestDFTEmbedder_Embed(t *testing.T) {
	e := NewDFTEmbedder(0)
	if e.Dimensions() != DefaultDFTDimensions {
		t.Fatalf("Dimensions=%d", e.Dimensions())
	}
	ctx := context.Background()
	v, err := e.Embed(ctx, "vector databases shard their data")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != DefaultDFTDimensions {
		t.Fatalf("len=%d", len(v))
	}
	var norm float64
	for _, x := range v {
		if x < 0 {
			t.Errorf("magnitudes must be non-negative, got %f", x)
		}
		norm += float64(x * x)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit norm, got %f", norm)
	}

	again, _ := e.Embed(ctx, "vector databases shard their data")
	for i := range v {
		if v[i] != again[i] {
			t.Fatal("embedding should be deterministic")
		}
	}
}

func TestDFTEmbedder_SingleCharacterIsFlat(t *testing.T) {
	// one sample: every bin has magnitude equal to the code point
	v, err := NewDFTEmbedder(4).Embed(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range v {
		if math.Abs(float64(x)-0.5) > 1e-6 {
			t.Errorf("bin %d = %f, want 0.5", i, x)
		}
	}
}

func TestDFTEmbedder_Empty(t *testing.T) {
	_, err := NewDFTEmbedder(10).Embed(context.Background(), "")
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestDFTEmbedder_EmbedBatch(t *testing.T) {
	out, err := NewDFTEmbedder(6).EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || len(out[0]) != 6 {
		t.Errorf("unexpected batch shape: %d x %d", len(out), len(out[0]))
	}
	if _, err := NewDFTEmbedder(6).EmbedBatch(context.Background(), []string{"ok", ""}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText for empty member, got %v", err)
	}
}
