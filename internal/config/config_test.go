package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Gateway:  GatewayConfig{APIKey: "test-key"},
		Embedding: EmbeddingConfig{
			BaseURL: "https://gateway.example.com/openai/v1",
		},
		Chat: ChatConfig{
			BaseURL: "https://gateway.example.com/openai/v1",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingGatewayKey(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.APIKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing gateway key")
	}
	if !strings.Contains(err.Error(), "gateway.api_key") {
		t.Errorf("error should name the missing field, got: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_OverlapNotSmallerThanChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.ChunkSize = 200
	cfg.Corpus.ChunkOverlap = 200

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Corpus.ChunkSize != 1000 {
		t.Errorf("chunk_size default = %d, want 1000", cfg.Corpus.ChunkSize)
	}
	if cfg.Corpus.ChunkOverlap != 200 {
		t.Errorf("chunk_overlap default = %d, want 200", cfg.Corpus.ChunkOverlap)
	}
	if cfg.Corpus.MinChunkLen != 100 {
		t.Errorf("min_chunk_len default = %d, want 100", cfg.Corpus.MinChunkLen)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k default = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Embedding.BatchSize != 50 {
		t.Errorf("batch_size default = %d, want 50", cfg.Embedding.BatchSize)
	}
	if cfg.Joke.TimeoutSec != 10 {
		t.Errorf("joke timeout default = %d, want 10", cfg.Joke.TimeoutSec)
	}
	if len(cfg.Corpus.Works) != 12 {
		t.Errorf("works default should list 12 stories, got %d", len(cfg.Corpus.Works))
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MINERVA_TEST_KEY", "sekrit")

	in := []byte("api_key: ${MINERVA_TEST_KEY}\nmodel: ${MINERVA_UNSET:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	if !strings.Contains(out, "api_key: sekrit") {
		t.Errorf("env var not expanded: %q", out)
	}
	if !strings.Contains(out, "model: gpt-4o-mini") {
		t.Errorf("default not applied: %q", out)
	}
}
