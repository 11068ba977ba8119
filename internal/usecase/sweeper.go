package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"TripIdeas/internal/ports"
)

// SweeperConfig controls which drafts count as stuck.
type SweeperConfig struct {
	StaleAfter time.Duration `yaml:"staleAfter"`
	BatchSize  int           `yaml:"batchSize"`
}

// RetrySweeper resubmits ideas that stayed in DRAFT longer than StaleAfter.
type RetrySweeper struct {
	repo       ports.IdeaRepository
	queue      ports.EnrichmentQueue
	staleAfter time.Duration
	batch      int
	logger     *slog.Logger
	now        func() time.Time
}

// NewRetrySweeper defaults to drafts older than 15 minutes, 50 per sweep.
func NewRetrySweeper(repo ports.IdeaRepository, queue ports.EnrichmentQueue, cfg SweeperConfig, log *slog.Logger) *RetrySweeper {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 15 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RetrySweeper{
		repo:       repo,
		queue:      queue,
		staleAfter: cfg.StaleAfter,
		batch:      cfg.BatchSize,
		logger:     log,
		now:        time.Now,
	}
}

// Sweep returns how many ideas were resubmitted. Individual submission
// failures do not stop the sweep; they are joined into the returned error.
func (s *RetrySweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.staleAfter)
	ids, err := s.repo.ListStaleDrafts(ctx, cutoff, s.batch)
	if err != nil {
		return 0, fmt.Errorf("list stale drafts: %w", err)
	}

	var (
		submitted int
		errs      []error
	)
	for _, id := range ids {
		if err := s.queue.EnqueueEnrich(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("resubmit %s: %w", id, err))
			continue
		}
		submitted++
	}

	if len(ids) > 0 {
		s.logger.Info("stale drafts resubmitted", "found", len(ids), "submitted", submitted)
	}
	return submitted, errors.Join(errs...)
}
