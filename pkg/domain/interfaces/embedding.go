package interfaces

import "context"

// Embedder turns texts into vectors of model.EmbeddingDimension.
// It never fails; implementations degrade to a deterministic fallback vector.
type Embedder interface {
	Embed(ctx context.Context, texts []string) [][]float32
}
