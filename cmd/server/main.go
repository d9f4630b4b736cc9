// Package main implements the entry point for the FlashCardMasher
// server, which manages flashcard decks, study sessions, statistics,
// and LLM-backed card generation.
package main

import (
	"context"
	"log"

	"github.com/mahiatlinux/FlashCardMasher/internal/config"
	"github.com/mahiatlinux/FlashCardMasher/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_url_present", cfg.Database.URL != "",
		"gemini_key_present", cfg.LLM.GeminiAPIKey != "")

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.runner.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
