// Package db defines the storage facade the semantic store is built on.
package db

import (
	"context"
	"time"
)

// Store is the database facade for the corpus index: hash entries addressed
// by chunk id, one FT index per collection, KNN search over the vector field.
type Store interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()

	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)

	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)

	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldTag is a tag field (exact-match metadata such as the story title).
	IndexFieldTag IndexFieldType = iota
	// IndexFieldVector is an embedding vector field.
	IndexFieldVector
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceCosine is cosine distance.
	DistanceCosine DistanceMetric = "COSINE"
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
)

// IndexField describes a single field in an FT index schema.
// Vectors are always FLOAT32 HNSW; M and EFConstruct fall back to server
// defaults when zero.
type IndexField struct {
	Name string
	Type IndexFieldType

	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition is a complete FT index definition over HASH entries.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search. Score is cosine similarity
// clamped to [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
