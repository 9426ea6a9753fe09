package embedding

import "fmt"

// Provider names an embedding algorithm.
type Provider string

const (
	// ProviderDFT uses DFTEmbedder. Needs no model files.
	ProviderDFT Provider = "dft"
	// ProviderONNX uses ONNXEmbedder. Requires CGO and the onnxruntime library.
	ProviderONNX Provider = "onnx"
	// ProviderMock uses MockEmbedder (tests and demos).
	ProviderMock Provider = "mock"
)

// Options configures New.
type Options struct {
	Provider   string
	ModelPath  string
	Dimensions int
	MaxTokens  int
	CacheSize  int // 0 disables caching
}

// New creates the embedder named by opts.Provider, wrapped in a CachedEmbedder
// when opts.CacheSize is positive. An empty provider selects DFT.
func New(opts Options) (Embedder, error) {
	var inner Embedder
	switch Provider(opts.Provider) {
	case ProviderDFT, "":
		inner = NewDFTEmbedder(opts.Dimensions)
	case ProviderMock:
		inner = NewMockEmbedder(opts.Dimensions)
	case ProviderONNX:
		e, err := NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: dft, onnx, mock)", opts.Provider)
	}
	if opts.CacheSize > 0 {
		return NewCachedEmbedder(inner, opts.CacheSize), nil
	}
	return inner, nil
}
