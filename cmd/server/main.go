// Package main is the entry point for the Insightmate API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dharsanguruparan/insightmate/internal/chat"
	"github.com/dharsanguruparan/insightmate/internal/config"
	"github.com/dharsanguruparan/insightmate/internal/extract"
	"github.com/dharsanguruparan/insightmate/internal/ingest"
	"github.com/dharsanguruparan/insightmate/internal/server"
	"github.com/dharsanguruparan/insightmate/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	st, err := store.New(cfg.DataDir, cfg.UserDataFile)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}
	extractor := extract.New()
	pipeline, err := ingest.New(extractor, cfg.UploadDir, cfg.MaxFileSize)
	if err != nil {
		log.Fatalf("init pipeline: %v", err)
	}
	responder := chat.New(cfg.OpenAIKey, cfg.Model)
	srv := server.New(cfg, st, pipeline, responder)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
