package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/athenaeum-labs/minerva/internal/config"
	dbRedis "github.com/athenaeum-labs/minerva/internal/db/redis"
	"github.com/athenaeum-labs/minerva/internal/domain"
	corpusrepo "github.com/athenaeum-labs/minerva/internal/repository/corpus"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the indexed collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus() error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

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

	vectorDim := cfg.Embedding.Dimensions
	if vectorDim == 0 {
		vectorDim = defaultVectorDim
	}
	repo := corpusrepo.New(store, cfg.Database.KeyPrefix, cfg.Corpus.Collection, vectorDim)

	meta, err := repo.Info(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotIndexed) {
			partial, perr := repo.IndexExists(ctx)
			if perr != nil {
				return fmt.Errorf("check index: %w", perr)
			}
			if partial {
				color.Yellow("Collection %q has an incomplete build. Re-run: minerva index", cfg.Corpus.Collection)
			} else {
				color.Yellow("Collection %q is not indexed. Run: minerva index", cfg.Corpus.Collection)
			}
			return nil
		}
		return fmt.Errorf("read collection info: %w", err)
	}

	stored, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count entries: %w", err)
	}

	color.Green("Collection %q is ready", cfg.Corpus.Collection)
	fmt.Printf("  chunks:   %s (%d stored)\n", meta["chunks"], stored)
	fmt.Printf("  model:    %s\n", meta["model"])
	fmt.Printf("  built_at: %s\n", meta["built_at"])
	return nil
}
