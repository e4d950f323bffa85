package corpus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenaeum-labs/minerva/internal/db"
	"github.com/athenaeum-labs/minerva/internal/domain"
)

// fakeStore is an in-memory db.Store good enough to verify key layout,
// index definitions, and readiness semantics.
type fakeStore struct {
	hashes  map[string]map[string]string
	indexes map[string]*db.IndexDefinition
	knn     []db.SearchEntry
	knnQ    *db.KNNQuery
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

func (f *fakeStore) Ping(context.Context) error                        { return nil }
func (f *fakeStore) WaitForReady(context.Context, time.Duration) error { return nil }
func (f *fakeStore) Close()                                            {}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if _, ok := f.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	f.indexes[def.Name] = def
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, name string) error {
	if _, ok := f.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(f.indexes, name)
	return nil
}

func (f *fakeStore) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := f.indexes[name]
	return ok, nil
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.hashes[key] = fields
	return nil
}

func (f *fakeStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		f.hashes[item.Key] = item.Fields
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := f.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return h, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.hashes, k)
	}
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.hashes[key]
	return ok, nil
}

func (f *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := pattern[:len(pattern)-1] // trailing *
	var keys []string
	for k := range f.hashes {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.knnQ = q
	return &db.SearchResult{Total: len(f.knn), Entries: f.knn}, nil
}

func (f *fakeStore) SearchCount(_ context.Context, index, _ string) (int, error) {
	if _, ok := f.indexes[index]; !ok {
		return 0, db.ErrIndexNotFound
	}
	n := 0
	for k := range f.hashes {
		if k != "minerva:father_brown:meta" {
			n++
		}
	}
	return n, nil
}

func newRepo(store db.Store) *Repo {
	return New(store, "minerva:", "father_brown", 4)
}

func TestReset_CreatesIndexAndClearsState(t *testing.T) {
	store := newFakeStore()
	repo := newRepo(store)

	// leftovers from a previous build
	store.hashes["minerva:father_brown:chunk:old_0"] = map[string]string{"__content": "x"}
	store.hashes["minerva:father_brown:meta"] = map[string]string{"chunks": "1"}

	require.NoError(t, repo.Reset(context.Background()))

	assert.Empty(t, store.hashes, "old entries and meta must be gone")

	def := store.indexes["minerva:father_brown:idx"]
	require.NotNil(t, def)
	assert.Equal(t, []string{"minerva:father_brown:chunk:"}, def.Prefixes)
	require.Len(t, def.Fields, 2)
	assert.Equal(t, "story", def.Fields[0].Name)
	assert.Equal(t, db.IndexFieldTag, def.Fields[0].Type)
	assert.Equal(t, "vector", def.Fields[1].Name)
	assert.Equal(t, db.IndexFieldVector, def.Fields[1].Type)
	assert.Equal(t, 4, def.Fields[1].VectorDim)
	assert.Equal(t, db.DistanceCosine, def.Fields[1].VectorDistance)
}

func TestReset_ToleratesMissingIndex(t *testing.T) {
	repo := newRepo(newFakeStore())
	assert.NoError(t, repo.Reset(context.Background()))
}

func TestInsertBatch_WritesHashLayout(t *testing.T) {
	store := newFakeStore()
	repo := newRepo(store)

	entries := []domain.IndexedEntry{
		{
			Chunk:  domain.Chunk{ID: "the_blue_cross_0", Text: "passage", Story: "The Blue Cross"},
			Vector: []float32{1, 0, 0, 0},
		},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), entries))

	h := store.hashes["minerva:father_brown:chunk:the_blue_cross_0"]
	require.NotNil(t, h)
	assert.Equal(t, "passage", h["__content"])
	assert.Equal(t, "The Blue Cross", h["story"])
	assert.Len(t, h["vector"], 16, "4 little-endian float32s")
}

func TestIndexExists_TracksReset(t *testing.T) {
	store := newFakeStore()
	repo := newRepo(store)
	ctx := context.Background()

	ok, err := repo.IndexExists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Reset(ctx))

	ok, err = repo.IndexExists(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "reset leaves a fresh index behind")
}

func TestReadiness_FollowsMetaKey(t *testing.T) {
	store := newFakeStore()
	repo := newRepo(store)
	ctx := context.Background()

	ready, err := repo.Ready(ctx)
	require.NoError(t, err)
	assert.False(t, ready)

	require.NoError(t, repo.MarkReady(ctx, 42, "text-embedding-3-small"))

	ready, err = repo.Ready(ctx)
	require.NoError(t, err)
	assert.True(t, ready)

	meta := store.hashes["minerva:father_brown:meta"]
	require.NotNil(t, meta)
	assert.Equal(t, "42", meta["chunks"])
	assert.Equal(t, "text-embedding-3-small", meta["model"])
	assert.NotEmpty(t, meta["built_at"])
}

func TestInfo_NotIndexed(t *testing.T) {
	repo := newRepo(newFakeStore())
	_, err := repo.Info(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotIndexed)
}

func TestInfo_ReturnsMeta(t *testing.T) {
	store := newFakeStore()
	repo := newRepo(store)
	ctx := context.Background()

	require.NoError(t, repo.MarkReady(ctx, 7, "text-embedding-3-small"))

	meta, err := repo.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", meta["chunks"])
	assert.Equal(t, "text-embedding-3-small", meta["model"])
}

func TestCount_MissingIndexIsZero(t *testing.T) {
	repo := newRepo(newFakeStore())
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchKNN_MapsHits(t *testing.T) {
	store := newFakeStore()
	store.knn = []db.SearchEntry{
		{Key: "minerva:father_brown:chunk:a_0", Score: 0.93, Fields: map[string]string{
			"__content": "first passage", "story": "The Blue Cross",
		}},
		{Key: "minerva:father_brown:chunk:b_0", Score: 0.81, Fields: map[string]string{
			"__content": "second passage", "story": "The Queer Feet",
		}},
	}
	repo := newRepo(store)

	hits, err := repo.SearchKNN(context.Background(), []float32{1, 0, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, domain.Hit{Text: "first passage", Story: "The Blue Cross", Score: 0.93}, hits[0])
	assert.Equal(t, "The Queer Feet", hits[1].Story)

	require.NotNil(t, store.knnQ)
	assert.Equal(t, "minerva:father_brown:idx", store.knnQ.IndexName)
	assert.Equal(t, 3, store.knnQ.K)
	assert.Contains(t, store.knnQ.ReturnFields, "__content")
}
