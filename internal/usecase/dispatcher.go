package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

// ErrDispatcherClosed is reported by Pending results submitted after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Runner enriches one idea.
type Runner interface {
	Enrich(ctx context.Context, ideaID string) error
}

// DispatcherConfig bounds background work.
type DispatcherConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// Pending is the result of a submitted enrichment. Callers may ignore it.
type Pending struct {
	IdeaID string

	done chan struct{}
	err  error
}

func newPending(ideaID string) *Pending {
	return &Pending{IdeaID: ideaID, done: make(chan struct{})}
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

// Done is closed when the run has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the run result, or nil while it is still running.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the run finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatcher runs enrichments in the background without blocking the submitter.
type Dispatcher struct {
	runner  Runner
	logger  *slog.Logger
	timeout time.Duration
	slots   chan struct{}

	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.EnrichmentQueue = (*Dispatcher)(nil)

// NewDispatcher defaults to 4 concurrent runs of at most 5 minutes each.
func NewDispatcher(runner Runner, cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		runner:  runner,
		logger:  log,
		timeout: cfg.Timeout,
		slots:   make(chan struct{}, cfg.Workers),
		base:    base,
		cancel:  cancel,
	}
}

// Submit schedules an enrichment and returns immediately.
func (d *Dispatcher) Submit(ideaID string) *Pending {
	p := newPending(ideaID)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		p.finish(ErrDispatcherClosed)
		return p
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		p.finish(d.run(ideaID))
	}()
	return p
}

// EnqueueEnrich lets the dispatcher stand in for the durable queue.
func (d *Dispatcher) EnqueueEnrich(_ context.Context, ideaID string) error {
	p := d.Submit(ideaID)
	if errors.Is(p.Err(), ErrDispatcherClosed) {
		return ErrDispatcherClosed
	}
	return nil
}

func (d *Dispatcher) run(ideaID string) error {
	select {
	case d.slots <- struct{}{}:
		defer func() { <-d.slots }()
	case <-d.base.Done():
		return d.base.Err()
	}

	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	defer cancel()

	err := d.runner.Enrich(ctx, ideaID)
	switch {
	case err == nil:
	case domain.CodeOf(err) == domain.CodeAlreadyProcessing:
		d.logger.Info("enrichment skipped, already running elsewhere", "idea_id", ideaID)
	default:
		d.logger.Warn("background enrichment failed", "idea_id", ideaID, "code", domain.CodeOf(err), "error", err)
	}
	return err
}

// Close stops accepting work and waits for running enrichments until ctx is done,
// then cancels whatever is left.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-finished
		return ctx.Err()
	}
}
