package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/llm"
	"github.com/csheth/whatif/internal/server"
	"github.com/csheth/whatif/internal/store"
)

var (
	serveAddr     string
	serveDB       string
	serveProvider string
	serveModel    string
	serveRate     int
	serveCacheTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WhatIf HTTP service",
	Long: `Serves POST /submit_question, GET /get_inspiration_questions and
GET /get_background_questions. Questions are answered by the configured LLM
provider (groq, openai, ollama or mock) and logged to a sqlite database.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", "", "listen address (default $WHATIF_ADDR or :5000)")
	f.StringVar(&serveDB, "db", "", "sqlite database path (default $WHATIF_DB)")
	f.StringVar(&serveProvider, "provider", "", "groq, openai, ollama or mock (default $LLM_PROVIDER)")
	f.StringVar(&serveModel, "model", "", "model name override (default $LLM_MODEL)")
	f.IntVar(&serveRate, "rate", 0, "submissions per minute per client, 0 keeps $WHATIF_RATE_PER_MINUTE")
	f.DurationVar(&serveCacheTTL, "cache-ttl", 0, "reuse answers to repeated questions for this long (default $WHATIF_CACHE_TTL)")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = serveAddr
	}
	if flags.Changed("db") {
		cfg.DB = serveDB
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider = serveProvider
	}
	if flags.Changed("model") {
		cfg.LLM.Model = serveModel
	}
	if flags.Changed("rate") {
		cfg.RatePerMinute = serveRate
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL = serveCacheTTL
	}

	gen, err := llm.New(cfg.LLMConfig())
	if err != nil {
		return fmt.Errorf("configure generator: %w", err)
	}
	gen, err = llm.WithCache(gen, cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("configure answer cache: %w", err)
	}

	questions, err := store.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer questions.Close()

	if logger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Deps{
		Generator:     gen,
		Log:           questions,
		Logger:        logger.Named("server"),
		RatePerMinute: cfg.RatePerMinute,
	})
	logger.Info("question log ready", zap.String("path", questions.Path()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, cfg.Addr)
}
