// Package embedding turns text into fixed-dimension vectors and ranks vectors by cosine similarity.
package embedding

import "context"

// DefaultDimensions is the embedding size used when none is configured.
const DefaultDimensions = 1024

// Embedder produces vector embeddings for text.
type Embedder interface {
	// Embed returns the embedding for text. The empty string is valid input.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one embedding per text; result[i] belongs to texts[i].
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
