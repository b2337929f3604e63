package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shop-agent/config"
	"shop-agent/internal/ai"
	"shop-agent/internal/core"
	"shop-agent/internal/media"
	"shop-agent/internal/render"
	"shop-agent/internal/store"
	"shop-agent/internal/store/memstore"
	"shop-agent/internal/store/postgres"
	"shop-agent/internal/store/sheets"
)

// BuildStore constructs the configured store backend, wrapped with
// bounded retry, and ensures every collection exists. The returned
// close func releases backend resources and is safe to call on nil
// backends.
func BuildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	var (
		st      store.Store
		cleanup = func() {}
	)
	switch cfg.Store.Backend {
	case "memory":
		st = memstore.New()
	case "sheets":
		client, err := sheets.New(ctx, cfg.Store.SpreadsheetID, cfg.Store.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("init sheets store: %w", err)
		}
		st = client
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres pool: %w", err)
		}
		pg, err := postgres.New(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("init postgres store: %w", err)
		}
		st = pg
		cleanup = pool.Close
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	st = store.WithRetry(st, cfg.Store.RetryAttempts, cfg.Store.RetryBackoff, logger)
	if err := store.EnsureAll(ctx, st); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ensure collections: %w", err)
	}
	return st, cleanup, nil
}

// Build wires the full application service over the given store.
func Build(st store.Store, cfg *config.Config, logger *zap.Logger) ApplicationService {
	ids := core.NewIDGenerator()
	inventory := core.NewInventoryService(st, logger)
	recorder := core.NewRecorderService(st, ids, logger)
	directory := core.NewDirectoryService(st, logger)
	invoices := core.NewInvoiceService(st, ids)
	jobs := core.NewServiceJobService(st, ids, logger)
	finance := core.NewFinanceService(st)
	tasks := core.NewTaskService(st)
	reporting := core.NewReportingService(st, inventory, recorder, finance, tasks, logger)
	memory := core.NewMemoryService(st)

	orch := core.NewOrchestrator(inventory, recorder, directory, invoices, jobs,
		finance, tasks, reporting, render.NewPDFRenderer(), logger)

	classifier := ai.NewClassifier(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	var speech media.SpeechService
	if cfg.Speech.Enabled {
		speech = media.NewSpeechService(cfg.OpenAI.APIKey)
	}

	return New(classifier, orch, memory, speech, cfg.OpenAI.ClassifyTimeout, logger)
}

// NewLogger builds a production zap logger at the configured level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
