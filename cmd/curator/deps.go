package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quizhub/curator/internal/domain/ports"
	"github.com/quizhub/curator/internal/domain/services"
	"github.com/quizhub/curator/internal/infrastructure/config"
	"github.com/quizhub/curator/internal/infrastructure/corpus/jsonstore"
	"github.com/quizhub/curator/internal/infrastructure/store/sqlite"
)

// Deps holds the dependencies commands operate on.
type Deps struct {
	Config *config.Config
	Queue  ports.WorkQueue
	Ledger ports.Ledger
	Corpus ports.CorpusStore
	Gate   *services.QualityGate
}

// withDeps loads config and builds dependencies, then calls the
// provided function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	repo, err := sqlite.NewRepository(cfg.Store)
	if err != nil {
		return fmt.Errorf("creating work store: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring work store schema: %w", err)
	}

	corpus := jsonstore.New(cfg.Corpus.Dir)

	deps := &Deps{
		Config: cfg,
		Queue:  repo,
		Ledger: repo,
		Corpus: corpus,
		Gate:   services.NewQualityGateWith(cfg.Quality.MinFieldLength, cfg.Quality.Placeholders),
	}

	return fn(deps)
}

// newRecovery builds the recovery sweep from config.
func newRecovery(d *Deps) (*services.Recovery, error) {
	staleAfter, err := d.Config.Queue.StaleAfterDuration()
	if err != nil {
		return nil, err
	}
	return services.NewRecovery(d.Queue, d.Ledger, staleAfter), nil
}
