package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/vecshard/pkg/utils"
)

// DefaultDFTDimensions is the number of frequency bins produced by DFTEmbedder.
const DefaultDFTDimensions = 10

// DFTEmbedder embeds text as the magnitudes of the first bins of the discrete
// Fourier transform of its code points, L2-normalised. It needs no model
// files and is the default provider.
type DFTEmbedder struct {
	dimensions int
}

// NewDFTEmbedder returns a DFT embedder producing vectors of the given length.
func NewDFTEmbedder(dimensions int) *DFTEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDFTDimensions
	}
	return &DFTEmbedder{dimensions: dimensions}
}

// Embed returns the normalised DFT magnitude spectrum of text.
func (e *DFTEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	codes := []rune(text)
	n := float64(len(codes))
	vec := make([]float32, e.dimensions)
	for k := range vec {
		var re, im float64
		for t, c := range codes {
			angle := 2 * math.Pi * float64(t) * float64(k) / n
			re += float64(c) * math.Cos(angle)
			im -= float64(c) * math.Sin(angle)
		}
		vec[k] = float32(math.Sqrt(re*re + im*im))
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *DFTEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the embedding dimension.
func (e *DFTEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *DFTEmbedder) Close() error {
	return nil
}
