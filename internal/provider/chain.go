// Package provider acquires moodboard images through an ordered chain of strategies.
package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"TripIdeas/internal/domain"
)

// Request carries what a strategy needs to find images for an idea.
type Request struct {
	Prompt    string
	MonthHint *int
}

// Strategy is one way of obtaining images (generation, stock search, placeholders).
type Strategy interface {
	Name() string
	Acquire(ctx context.Context, req Request) (domain.ImageResult, error)
}

// Chain tries strategies in priority order and always ends with placeholders.
type Chain struct {
	strategies []Strategy
	fallback   *Placeholder
	timeout    time.Duration
	logger     *slog.Logger
}

// NewChain wires strategies in the order given. Each attempt is bounded by timeout when positive.
func NewChain(fallback *Placeholder, timeout time.Duration, log *slog.Logger, strategies ...Strategy) *Chain {
	if fallback == nil {
		fallback = NewPlaceholder(PlaceholderConfig{}, nil)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Chain{
		strategies: strategies,
		fallback:   fallback,
		timeout:    timeout,
		logger:     log,
	}
}

// Register appends a strategy at the lowest priority before the placeholder.
func (c *Chain) Register(s Strategy) {
	c.strategies = append(c.strategies, s)
}

// Acquire never fails: provider errors and timeouts move on to the next strategy.
func (c *Chain) Acquire(ctx context.Context, req Request) domain.ImageResult {
	for _, s := range c.strategies {
		res, err := c.attempt(ctx, s, req)
		if errors.Is(err, domain.ErrNotConfigured) {
			c.logger.Debug("image strategy not configured, skipping", "strategy", s.Name())
			continue
		}
		if err != nil {
			c.logger.Warn("image strategy failed, falling back", "strategy", s.Name(), "error", err)
			continue
		}
		if len(res.URLs) == 0 {
			c.logger.Warn("image strategy returned nothing, falling back", "strategy", s.Name())
			continue
		}
		c.logger.Debug("image strategy succeeded", "strategy", s.Name(), "count", len(res.URLs))
		return res
	}

	res, _ := c.fallback.Acquire(ctx, req)
	c.logger.Info("using placeholder images", "count", len(res.URLs))
	return res
}

func (c *Chain) attempt(ctx context.Context, s Strategy, req Request) (res domain.ImageResult, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("image strategy panicked", "strategy", s.Name(), "panic", r)
			res, err = domain.ImageResult{}, domain.ErrProviderFailure
		}
	}()
	return s.Acquire(ctx, req)
}
