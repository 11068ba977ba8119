package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"TripIdeas/internal/ports"
)

// Scheduler wires the ticker driver with the retry sweeper.
type Scheduler struct {
	driver  ports.Scheduler
	sweeper *RetrySweeper
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring sweeps.
func NewScheduler(driver ports.Scheduler, sweeper *RetrySweeper, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, sweeper: sweeper, logger: log}
}

// Start registers the sweep with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.sweeper == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.sweeper.Sweep(ctx); err != nil {
			s.logger.Warn("retry sweep failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
