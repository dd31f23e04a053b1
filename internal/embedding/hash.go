package embedding

import (
	"context"
	"math"
	"unicode/utf16"

	"github.com/hyperjump/kensaku/pkg/utils"
)

// HashEmbedder is a deterministic placeholder embedder. Identical text always yields a
// bit-identical vector, which keeps indexes reproducible until a model-backed Embedder is
// configured.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns an embedder producing vectors of the given dimensions.
// Non-positive dimensions fall back to DefaultDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// StringHash returns the absolute value of the 32-bit rolling hash (h = h*31 + unit) over
// the UTF-16 code units of s. The absolute value is taken in 64 bits, so math.MinInt32
// maps to 2^31.
func StringHash(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Embed returns sin(hash+i)*0.5+0.5 for each component i, L2-normalized.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := float64(StringHash(text))
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(h+float64(i))*0.5 + 0.5)
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
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

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEmbedder.
func (e *HashEmbedder) Close() error {
	return nil
}
