package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/athenaeum-labs/minerva/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- index.go tests ---

func TestCreateIndex_BuildsVectorSchema(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.CREATE" || cmd[1] != "minerva:father_brown:idx" {
				return false
			}
			// ON HASH with the entry prefix, story TAG, HNSW vector field.
			joined := strings.Join(cmd, " ")
			return strings.Contains(joined, "ON HASH") &&
				strings.Contains(joined, "PREFIX 1 minerva:father_brown:") &&
				strings.Contains(joined, "story TAG") &&
				strings.Contains(joined, "vector VECTOR HNSW") &&
				strings.Contains(joined, "DIM 1536") &&
				strings.Contains(joined, "DISTANCE_METRIC COSINE")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{
		Name:     "minerva:father_brown:idx",
		Prefixes: []string{"minerva:father_brown:"},
		Fields: []db.IndexField{
			{Name: "story", Type: db.IndexFieldTag},
			{Name: "vector", Type: db.IndexFieldVector, VectorDim: 1536},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), &db.IndexDefinition{
		Name:     "idx",
		Prefixes: []string{"p:"},
		Fields:   []db.IndexField{{Name: "story", Type: db.IndexFieldTag}},
	})
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "mykey"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "mykey", map[string]string{"f1": "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_PipelinesAllItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), mock.Match("HSET", "k1", "f", "v"), mock.Match("HSET", "k2", "f", "v")).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f": "v"}},
		{Key: "k2", Fields: map[string]string{"f": "v"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAll_MissingKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "missing")).
		Return(mock.Result(mock.RedisArray()))

	s := NewStoreForTest(c)
	if _, err := s.HGetAll(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

// --- search.go tests ---

func TestSearchKNN_ParsesEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "minerva:father_brown:idx"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("minerva:father_brown:the_blue_cross_0"),
			mock.RedisArray(
				mock.RedisString("__content"), mock.RedisString("a passage"),
				mock.RedisString("story"), mock.RedisString("The Blue Cross"),
				mock.RedisString("__vector_score"), mock.RedisString("0.1"),
			),
			mock.RedisString("minerva:father_brown:the_queer_feet_800"),
			mock.RedisArray(
				mock.RedisString("__content"), mock.RedisString("another passage"),
				mock.RedisString("story"), mock.RedisString("The Queer Feet"),
				mock.RedisString("__vector_score"), mock.RedisString("0.4"),
			),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "minerva:father_brown:idx",
		Vector:       []float32{0.1, 0.2},
		K:            3,
		ReturnFields: []string{"__content", "story", "__vector_score"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got total=%d len=%d", res.Total, len(res.Entries))
	}
	if res.Entries[0].Fields["story"] != "The Blue Cross" {
		t.Errorf("unexpected story: %q", res.Entries[0].Fields["story"])
	}
	if got := res.Entries[0].Score; got < 0.89 || got > 0.91 {
		t.Errorf("expected similarity ~0.9, got %f", got)
	}
	if _, leaked := res.Entries[0].Fields["__vector_score"]; leaked {
		t.Error("__vector_score should be stripped from fields")
	}
}

func TestSearchKNN_EmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "idx", Vector: []float32{0.1}, K: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestSearchCount_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	if _, err := s.SearchCount(context.Background(), "idx", "*"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestVectorToBytes_LittleEndian(t *testing.T) {
	b := vectorToBytes([]float32{1.0})
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(b))
	}
	// 1.0 as float32 is 0x3F800000, little-endian.
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x80 || b[3] != 0x3F {
		t.Errorf("unexpected encoding: % x", b)
	}
}
