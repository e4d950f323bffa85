package index

import (
	"context"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// Repository is the persistence surface the indexer needs: wipe and recreate
// the collection, write entry batches, and publish the readiness marker once
// everything is in place.
type Repository interface {
	Reset(ctx context.Context) error
	InsertBatch(ctx context.Context, entries []domain.IndexedEntry) error
	MarkReady(ctx context.Context, chunks int, model string) error
}

// Embedder vectorizes chunk text. Providers that also implement
// domain.BatchEmbedder get one API call per batch; others fall back to
// per-text calls.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
