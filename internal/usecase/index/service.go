// Package index rebuilds the searchable story collection from chunked text.
package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

// Progress reports batches as they are written, for CLI feedback.
type Progress func(done, total int)

// Service drives a full rebuild of the collection.
type Service struct {
	repo      Repository
	embedder  Embedder
	batchSize int
	model     string
	logger    *zap.Logger
}

// Config holds the indexing settings.
type Config struct {
	BatchSize int
	Model     string
}

// New creates the indexing service.
func New(repo Repository, embedder Embedder, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		embedder:  embedder,
		batchSize: cfg.BatchSize,
		model:     cfg.Model,
		logger:    logger,
	}
}

// Rebuild replaces the collection with the given chunks. The readiness marker
// is written only after the last batch lands, so readers either see the
// previous complete state (nothing, after the reset) or the new complete
// state, never a half-built collection marked usable. A failed embed aborts
// the run and leaves the collection unready.
func (s *Service) Rebuild(ctx context.Context, chunks []domain.Chunk, progress Progress) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("reset collection: %w", err)
	}
	if len(chunks) == 0 {
		s.logger.Warn("rebuild called with no chunks, collection left unready")
		return nil
	}

	total := (len(chunks) + s.batchSize - 1) / s.batchSize

	for batch := 0; batch*s.batchSize < len(chunks); batch++ {
		start := batch * s.batchSize
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		window := chunks[start:end]

		texts := make([]string, len(window))
		for i, c := range window {
			texts[i] = c.Text
		}

		result, err := s.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d/%d: %w", batch+1, total, err)
		}
		if len(result.Embeddings) != len(window) {
			return fmt.Errorf(
				"embed batch %d/%d: got %d vectors for %d chunks: %w",
				batch+1, total, len(result.Embeddings), len(window), domain.ErrEmbeddingProviderError,
			)
		}

		entries := make([]domain.IndexedEntry, len(window))
		for i, c := range window {
			entries[i] = domain.IndexedEntry{Chunk: c, Vector: result.Embeddings[i]}
		}
		if err := s.repo.InsertBatch(ctx, entries); err != nil {
			return fmt.Errorf("insert batch %d/%d: %w", batch+1, total, err)
		}

		s.logger.Info("indexed batch",
			zap.Int("batch", batch+1),
			zap.Int("total_batches", total),
			zap.Int("chunks", len(window)),
			zap.Int("tokens", result.TotalTokens),
		)
		if progress != nil {
			progress(batch+1, total)
		}
	}

	if err := s.repo.MarkReady(ctx, len(chunks), s.model); err != nil {
		return fmt.Errorf("mark collection ready: %w", err)
	}

	s.logger.Info("rebuild complete", zap.Int("chunks", len(chunks)))
	return nil
}

func (s *Service) embedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if batcher, ok := s.embedder.(domain.BatchEmbedder); ok {
		return batcher.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, s.embedder, texts)
}
