package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mahiatlinux/FlashCardMasher/internal/config"
	"github.com/mahiatlinux/FlashCardMasher/internal/extract"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
	"github.com/mahiatlinux/FlashCardMasher/internal/platform/gemini"
	"github.com/mahiatlinux/FlashCardMasher/internal/platform/postgres"
	"github.com/mahiatlinux/FlashCardMasher/internal/platform/sqlite"
	"github.com/mahiatlinux/FlashCardMasher/internal/stats"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
	"github.com/mahiatlinux/FlashCardMasher/internal/study"
	"github.com/mahiatlinux/FlashCardMasher/internal/task"
)

// application bundles the composed dependencies of the server.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	store     *store.Store
	stats     *stats.Aggregator
	sessions  *study.Manager
	extractor *extract.Extractor
	generator generation.Generator
	runner    *task.Runner
	tracker   *task.JobTracker
	closeSnap func() error
}

// newApplication wires every component from configuration: the
// snapshot backend, the deck store, the study session manager, the
// extraction and generation collaborators, and the background runner.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	snap, closeSnap, err := openSnapshotter(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.New(ctx, snap, logger)
	if err != nil {
		_ = closeSnap()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if cfg.Store.BootstrapSeed {
		if err := st.Bootstrap(ctx); err != nil {
			_ = closeSnap()
			return nil, fmt.Errorf("failed to bootstrap store: %w", err)
		}
	}

	var generator generation.Generator
	if cfg.LLM.GeminiAPIKey != "" {
		generator, err = gemini.NewGenerator(ctx, logger, cfg.LLM)
		if err != nil {
			_ = closeSnap()
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
	} else {
		logger.Warn("no Gemini API key configured, card generation is disabled")
		generator = disabledGenerator{}
	}

	runner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)

	return &application{
		config:    cfg,
		logger:    logger,
		store:     st,
		stats:     stats.New(),
		sessions:  study.NewManager(st),
		extractor: extract.New(cfg.Extract, logger),
		generator: generator,
		runner:    runner,
		tracker:   task.NewJobTracker(),
		closeSnap: closeSnap,
	}, nil
}

// openSnapshotter selects the snapshot backend: Postgres when a
// database URL is configured, the local SQLite file otherwise.
func openSnapshotter(cfg *config.Config) (store.Snapshotter, func() error, error) {
	if cfg.Database.URL != "" {
		snap, err := postgres.Open(cfg.Database.URL, cfg.Store.Namespace)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres snapshot store: %w", err)
		}
		return snap, snap.Close, nil
	}

	snap, err := sqlite.Open(cfg.Database.Path, cfg.Store.Namespace)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite snapshot store: %w", err)
	}
	return snap, snap.Close, nil
}

// cleanup releases application resources in shutdown order: drain the
// task runner first so in-flight jobs finish their store writes, then
// close the snapshot backend.
func (app *application) cleanup() {
	app.runner.Stop()
	if err := app.closeSnap(); err != nil {
		app.logger.Error("failed to close snapshot store", "error", err)
	}
}

// disabledGenerator rejects generation requests when no LLM is
// configured, keeping the rest of the API usable.
type disabledGenerator struct{}

func (disabledGenerator) GenerateCards(
	ctx context.Context,
	sourceText string,
	opts generation.Options,
) ([]generation.CardDraft, error) {
	return nil, fmt.Errorf("%w: no language model API key configured", generation.ErrGenerationFailed)
}
