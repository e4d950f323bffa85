// Package search retrieves story passages semantically similar to a query.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// Service embeds a query and runs KNN retrieval over the collection.
type Service struct {
	repo       Repository
	embedder   Embedder
	previewLen int
	logger     *zap.Logger
}

// New creates the retrieval service. previewLen caps each returned passage,
// in runes, before the ellipsis.
func New(repo Repository, embedder Embedder, previewLen int, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		embedder:   embedder,
		previewLen: previewLen,
		logger:     logger,
	}
}

// Search returns up to k passages ordered by descending similarity. An
// unindexed collection yields domain.ErrNotIndexed.
func (s *Service) Search(ctx context.Context, query string, k int) ([]domain.Hit, error) {
	ready, err := s.repo.Ready(ctx)
	if err != nil {
		return nil, fmt.Errorf("readiness check: %w", err)
	}
	if !ready {
		return nil, domain.ErrNotIndexed
	}

	embedded, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.repo.SearchKNN(ctx, embedded.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	for i := range hits {
		hits[i].Text = preview(hits[i].Text, s.previewLen)
	}

	s.logger.Debug("retrieval complete",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
	)
	return hits, nil
}

// preview truncates text to max runes and appends an ellipsis marker.
func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes) + "..."
}
