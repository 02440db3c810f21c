package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/budgetlens-dev/budgetlens/internal/allocation"
	"github.com/budgetlens-dev/budgetlens/internal/assignment"
	"github.com/budgetlens-dev/budgetlens/internal/classify"
	"github.com/budgetlens-dev/budgetlens/internal/config"
	"github.com/budgetlens-dev/budgetlens/internal/ingest"
	"github.com/budgetlens-dev/budgetlens/internal/logging"
	"github.com/budgetlens-dev/budgetlens/internal/model"
	"github.com/budgetlens-dev/budgetlens/internal/report"
)

// app holds everything a command needs: config, logger, the allocation
// store, and the assignment service seeded from a fresh ingestion pass with
// the operator overlay replayed on top.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *allocation.Store
	service *assignment.Service
	builder *report.Builder
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Log.Level)

	store, err := allocation.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	transactions, err := ingestAll(cfg.Import.Dir, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	builder := report.NewBuilder()
	service := assignment.NewService(transactions, builder)

	decisions, err := assignment.LoadOverlay(overlayPath(cfg))
	if err != nil {
		store.Close()
		return nil, err
	}
	applied, stale := service.Apply(decisions)
	log.Debug().Int("applied", applied).Int("stale", len(stale)).Msg("replayed assignment overlay")
	for _, d := range stale {
		log.Warn().Str("id", d.ID).Msg("stale assignment decision skipped")
	}

	return &app{cfg: cfg, log: log, store: store, service: service, builder: builder}, nil
}

func (a *app) close() {
	a.store.Close()
}

// saveOverlay persists the current manual assignments.
func (a *app) saveOverlay() error {
	return assignment.SaveOverlay(overlayPath(a.cfg), a.service.Decisions())
}

func overlayPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.Database.Path), "assignments.csv")
}

// ingestAll parses and classifies every export in the drop directory.
func ingestAll(dir string, log zerolog.Logger) ([]model.Transaction, error) {
	files, err := ingest.Scan(dir)
	if err != nil {
		return nil, err
	}

	registry := ingest.DefaultRegistry()
	var transactions []model.Transaction
	for _, fi := range files {
		parser := registry.ForFile(fi.Name)
		if parser == nil {
			continue
		}
		f, err := os.Open(fi.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fi.Name, err)
		}
		records, err := parser.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fi.Name, err)
		}
		for _, rec := range records {
			transactions = append(transactions, classify.Classify(rec))
		}
		log.Debug().Str("file", fi.Name).Int("records", len(records)).Msg("ingested export")
	}
	return transactions, nil
}
