package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/config"
	dbRedis "github.com/athenaeum-labs/minerva/internal/db/redis"
	logpkg "github.com/athenaeum-labs/minerva/internal/logger"
	"github.com/athenaeum-labs/minerva/internal/metrics"
	"github.com/athenaeum-labs/minerva/internal/prompt"
	corpusrepo "github.com/athenaeum-labs/minerva/internal/repository/corpus"
	"github.com/athenaeum-labs/minerva/internal/tools"
	chiTransport "github.com/athenaeum-labs/minerva/internal/transport/chi"
	"github.com/athenaeum-labs/minerva/internal/transport/jokeapi"
	openaiTransport "github.com/athenaeum-labs/minerva/internal/transport/openai"
	chatuc "github.com/athenaeum-labs/minerva/internal/usecase/chat"
	searchuc "github.com/athenaeum-labs/minerva/internal/usecase/search"
	"github.com/athenaeum-labs/minerva/internal/version"
)

// text-embedding-3-small's native width, used when dimensions is unset.
const defaultVectorDim = 1536

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
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

	logger.Info("Starting minerva API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

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
	logger.Info("Connected to database")

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
	chatClient := openaiTransport.NewChatClient(&openaiTransport.ChatConfig{
		BaseURL:    cfg.Chat.BaseURL,
		GatewayKey: cfg.Gateway.APIKey,
		Model:      cfg.Chat.Model,
		Timeout:    time.Duration(cfg.Chat.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	repo := corpusrepo.New(store, cfg.Database.KeyPrefix, cfg.Corpus.Collection, vectorDim)
	retriever := searchuc.New(repo, embedder, cfg.Retrieval.PreviewLen, logger)

	jokes := jokeapi.New(cfg.Joke.URL, time.Duration(cfg.Joke.TimeoutSec)*time.Second, logger)

	registry := tools.NewRegistry(
		tools.NewSearchTool(retriever, cfg.Retrieval.TopK),
		tools.NewJokeTool(jokes),
		tools.NewCalculateTool(),
	)
	chatSvc := chatuc.New(chatClient, registry, prompt.System, cfg.Chat.MaxRounds, logger)

	server := chiTransport.NewServer(chatSvc, store, logger).WithEmbeddingCheck(embedder)
	router := server.Router(cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
