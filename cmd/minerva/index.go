package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/minerva/internal/config"
	"github.com/athenaeum-labs/minerva/internal/corpus"
	dbRedis "github.com/athenaeum-labs/minerva/internal/db/redis"
	logpkg "github.com/athenaeum-labs/minerva/internal/logger"
	"github.com/athenaeum-labs/minerva/internal/metrics"
	corpusrepo "github.com/athenaeum-labs/minerva/internal/repository/corpus"
	openaiTransport "github.com/athenaeum-labs/minerva/internal/transport/openai"
	indexuc "github.com/athenaeum-labs/minerva/internal/usecase/index"
)

var flagCorpusFile string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the story collection from the corpus file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex()
	},
}

func init() {
	indexCmd.Flags().StringVar(&flagCorpusFile, "file", "", "corpus text file (default: corpus.path from config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex() error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	path := flagCorpusFile
	if path == "" {
		path = cfg.Corpus.Path
	}
	if path == "" {
		return fmt.Errorf("no corpus file: set corpus.path in config or pass --file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus %s: %w", path, err)
	}

	color.Cyan("Chunking %d works from %s...", len(cfg.Corpus.Works), path)
	chunks := corpus.ChunkCorpus(string(data), cfg.Corpus.Works, corpus.ChunkConfig{
		Size:      cfg.Corpus.ChunkSize,
		Overlap:   cfg.Corpus.ChunkOverlap,
		MinLen:    cfg.Corpus.MinChunkLen,
		EndMarker: cfg.Corpus.EndMarker,
	})
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks produced: none of the configured titles were found in %s", path)
	}
	color.Cyan("Produced %d chunks", len(chunks))

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.Register()

	vectorDim := cfg.Embedding.Dimensions
	if vectorDim == 0 {
		vectorDim = defaultVectorDim
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		GatewayKey: cfg.Gateway.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	repo := corpusrepo.New(store, cfg.Database.KeyPrefix, cfg.Corpus.Collection, vectorDim)
	indexer := indexuc.New(repo, embedder, indexuc.Config{
		BatchSize: cfg.Embedding.BatchSize,
		Model:     cfg.Embedding.Model,
	}, logger)

	start := time.Now()
	err = indexer.Rebuild(ctx, chunks, func(done, total int) {
		fmt.Printf("  batch %d/%d\n", done, total)
	})
	if err != nil {
		color.Red("Rebuild failed: %v", err)
		return err
	}

	stored, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("verify entry count: %w", err)
	}

	color.Green("Indexed %d chunks (%d stored) in %s", len(chunks), stored, time.Since(start).Round(time.Millisecond))
	return nil
}
