// Package corpus persists chunk embeddings in the semantic store and serves
// KNN queries over them.
package corpus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/athenaeum-labs/minerva/internal/db"
	"github.com/athenaeum-labs/minerva/internal/domain"
)

// Field names of a stored chunk hash.
const (
	fieldContent = "__content"
	fieldVector  = "vector"
	fieldStory   = "story"
)

// HNSWConfig tunes the vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the corpus store over db.Store. Entries live under
// <prefix><collection>:chunk:<id>; the readiness meta hash sits outside the
// index prefix so it is never counted as an entry.
type Repo struct {
	store      db.Store
	prefix     string
	collection string
	vectorDim  int
	hnsw       HNSWConfig
}

// New creates a corpus repository for one collection.
func New(store db.Store, prefix, collection string, vectorDim int) *Repo {
	return &Repo{
		store:      store,
		prefix:     prefix,
		collection: collection,
		vectorDim:  vectorDim,
	}
}

// WithHNSW overrides the HNSW build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

func (r *Repo) entryPrefix() string {
	return r.prefix + r.collection + ":chunk:"
}

func (r *Repo) entryKey(id string) string {
	return r.entryPrefix() + id
}

func (r *Repo) indexName() string {
	return r.prefix + r.collection + ":idx"
}

func (r *Repo) metaKey() string {
	return r.prefix + r.collection + ":meta"
}

// Reset drops the existing index, entries, and readiness marker, then
// recreates an empty index. A store that was never built is not an error.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}

	keys, err := r.store.Scan(ctx, r.entryPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan entries: %w", err)
	}
	keys = append(keys, r.metaKey())
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}

	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.entryPrefix()},
		Fields: []db.IndexField{
			{Name: fieldStory, Type: db.IndexFieldTag},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// InsertBatch writes a batch of embedded chunks in one pipelined round-trip.
func (r *Repo) InsertBatch(ctx context.Context, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		items[i] = db.HashSetItem{
			Key: r.entryKey(e.Chunk.ID),
			Fields: map[string]string{
				fieldContent: e.Chunk.Text,
				fieldStory:   e.Chunk.Story,
				fieldVector:  vectorToBytes(e.Vector),
			},
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// MarkReady records the readiness marker. Written only after every batch has
// committed, so readers never mistake a half-built store for a complete one.
func (r *Repo) MarkReady(ctx context.Context, chunkCount int, model string) error {
	fields := map[string]string{
		"chunks":   strconv.Itoa(chunkCount),
		"model":    model,
		"built_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.store.HSet(ctx, r.metaKey(), fields); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	return nil
}

// IndexExists reports whether the FT index has been created, independent of
// the readiness marker. An index without a marker is an interrupted build.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	return ok, nil
}

// Ready reports whether a completed build exists.
func (r *Repo) Ready(ctx context.Context) (bool, error) {
	ok, err := r.store.Exists(ctx, r.metaKey())
	if err != nil {
		return false, fmt.Errorf("check ready: %w", err)
	}
	return ok, nil
}

// Info returns the readiness metadata (chunk count, model, build time).
// Returns domain.ErrNotIndexed when no completed build exists.
func (r *Repo) Info(ctx context.Context) (map[string]string, error) {
	meta, err := r.store.HGetAll(ctx, r.metaKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotIndexed
		}
		return nil, fmt.Errorf("read meta: %w", err)
	}
	return meta, nil
}

// Count returns the number of indexed entries.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// SearchKNN returns the k nearest chunks to the query vector.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldContent, fieldStory, "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}
	if res == nil || res.Total == 0 {
		return nil, nil
	}

	hits := make([]domain.Hit, 0, len(res.Entries))
	for _, entry := range res.Entries {
		hits = append(hits, domain.Hit{
			Text:  entry.Fields[fieldContent],
			Story: entry.Fields[fieldStory],
			Score: entry.Score,
		})
	}
	return hits, nil
}

// vectorToBytes encodes a float32 vector as little-endian bytes, the layout
// FT.SEARCH expects for FLOAT32 vector fields.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
