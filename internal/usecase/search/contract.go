package search

import (
	"context"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// Repository is the read side of the collection: readiness probe and KNN.
type Repository interface {
	Ready(ctx context.Context) (bool, error)
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.Hit, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
