package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the minerva service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Joke      JokeConfig      `yaml:"joke"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for the chat endpoint.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the semantic store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// GatewayConfig holds the model gateway credential shared by the embedding
// and chat backends. The key travels in an x-api-key header; the OpenAI
// bearer token the SDK sends is a dummy the gateway ignores.
type GatewayConfig struct {
	APIKey string `yaml:"api_key"`
}

// EmbeddingConfig holds embedding backend settings.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// ChatConfig holds chat-completion backend settings.
type ChatConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	MaxRounds  int    `yaml:"max_rounds"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CorpusConfig describes the story corpus and how it is chunked.
type CorpusConfig struct {
	Collection   string   `yaml:"collection"`
	Path         string   `yaml:"path"`
	EndMarker    string   `yaml:"end_marker"`
	Works        []string `yaml:"works"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	MinChunkLen  int      `yaml:"min_chunk_len"`
}

// RetrievalConfig holds semantic search settings.
type RetrievalConfig struct {
	TopK       int `yaml:"top_k"`
	PreviewLen int `yaml:"preview_len"`
}

// JokeConfig holds the external joke service settings.
type JokeConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// DefaultWorks lists the twelve Father Brown stories in corpus order.
// The chunker relies on this order to find each work's span.
var DefaultWorks = []string{
	"The Blue Cross",
	"The Secret Garden",
	"The Queer Feet",
	"The Flying Stars",
	"The Invisible Man",
	"The Honour of Israel Gow",
	"The Wrong Shape",
	"The Sins of Prince Saradine",
	"The Hammer of God",
	"The Eye of Apollo",
	"The Sign of the Broken Sword",
	"The Three Tools of Death",
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "minerva:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 50
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Chat.Model == "" {
		c.Chat.Model = "gpt-4o-mini"
	}
	if c.Chat.MaxRounds <= 0 {
		c.Chat.MaxRounds = 8
	}
	if c.Chat.TimeoutSec <= 0 {
		c.Chat.TimeoutSec = 60
	}
	if c.Corpus.Collection == "" {
		c.Corpus.Collection = "father_brown"
	}
	if c.Corpus.EndMarker == "" {
		c.Corpus.EndMarker = "*** END OF"
	}
	if len(c.Corpus.Works) == 0 {
		c.Corpus.Works = DefaultWorks
	}
	if c.Corpus.ChunkSize <= 0 {
		c.Corpus.ChunkSize = 1000
	}
	if c.Corpus.ChunkOverlap <= 0 {
		c.Corpus.ChunkOverlap = 200
	}
	if c.Corpus.MinChunkLen <= 0 {
		c.Corpus.MinChunkLen = 100
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 3
	}
	if c.Retrieval.PreviewLen <= 0 {
		c.Retrieval.PreviewLen = 500
	}
	if c.Joke.URL == "" {
		c.Joke.URL = "https://v2.jokeapi.dev/joke/Any"
	}
	if c.Joke.TimeoutSec <= 0 {
		c.Joke.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Gateway.APIKey == "" {
		return fmt.Errorf("gateway.api_key is required (set API_GATEWAY_KEY)")
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Chat.BaseURL == "" {
		return fmt.Errorf("chat.base_url is required")
	}
	if c.Corpus.ChunkOverlap >= c.Corpus.ChunkSize {
		return fmt.Errorf(
			"corpus.chunk_overlap must be smaller than corpus.chunk_size, got %d >= %d",
			c.Corpus.ChunkOverlap, c.Corpus.ChunkSize,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
