package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/domain"
)

type fakeRepo struct {
	ready      bool
	readyErr   error
	hits       []domain.Hit
	searchErr  error
	lastVector []float32
	lastK      int
}

func (f *fakeRepo) Ready(context.Context) (bool, error) {
	return f.ready, f.readyErr
}

func (f *fakeRepo) SearchKNN(_ context.Context, vector []float32, k int) ([]domain.Hit, error) {
	f.lastVector, f.lastK = vector, k
	return f.hits, f.searchErr
}

type fakeEmbedder struct {
	vector []float32
	err    error
	lastText string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.lastText = text
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vector}, nil
}

func TestSearch_ReturnsTruncatedHits(t *testing.T) {
	long := strings.Repeat("a", 600)
	repo := &fakeRepo{ready: true, hits: []domain.Hit{
		{Story: "The Blue Cross", Text: long, Score: 0.92},
		{Story: "The Secret Garden", Text: "short passage", Score: 0.85},
	}}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	svc := New(repo, embedder, 500, zap.NewNop())

	hits, err := svc.Search(context.Background(), "who is Valentin", 3)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, strings.Repeat("a", 500)+"...", hits[0].Text)
	assert.Equal(t, "short passage...", hits[1].Text)
	assert.Equal(t, "who is Valentin", embedder.lastText)
	assert.Equal(t, []float32{0.1, 0.2}, repo.lastVector)
	assert.Equal(t, 3, repo.lastK)
}

func TestSearch_NotIndexed(t *testing.T) {
	svc := New(&fakeRepo{ready: false}, &fakeEmbedder{}, 500, zap.NewNop())
	_, err := svc.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, domain.ErrNotIndexed)
}

func TestSearch_ReadinessProbeError(t *testing.T) {
	boom := errors.New("store down")
	svc := New(&fakeRepo{readyErr: boom}, &fakeEmbedder{}, 500, zap.NewNop())
	_, err := svc.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)
}

func TestSearch_EmbedError(t *testing.T) {
	svc := New(
		&fakeRepo{ready: true},
		&fakeEmbedder{err: domain.ErrEmbeddingProviderError},
		500, zap.NewNop(),
	)
	_, err := svc.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
}

func TestSearch_MultibyteTruncationIsRuneSafe(t *testing.T) {
	repo := &fakeRepo{ready: true, hits: []domain.Hit{
		{Story: "X", Text: strings.Repeat("é", 10)},
	}}
	svc := New(repo, &fakeEmbedder{vector: []float32{1}}, 4, zap.NewNop())

	hits, err := svc.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Equal(t, "éééé...", hits[0].Text)
}
