package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

// Generative asks an image generation backend for pictures and optionally mirrors them.
type Generative struct {
	generator ports.ImageGenerator
	mirror    ports.ObjectStore
	label     string
	logger    *slog.Logger
}

// NewGenerative wires a generator. mirror may be nil; generated URLs are then kept as-is.
func NewGenerative(generator ports.ImageGenerator, mirror ports.ObjectStore, label string, log *slog.Logger) *Generative {
	if label == "" {
		label = "generative"
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generative{generator: generator, mirror: mirror, label: label, logger: log}
}

func (g *Generative) Name() string {
	return "generative"
}

// Acquire returns ErrNotConfigured when no generator is wired so the chain moves on silently.
func (g *Generative) Acquire(ctx context.Context, req Request) (domain.ImageResult, error) {
	if g.generator == nil {
		return domain.ImageResult{}, domain.ErrNotConfigured
	}

	urls, err := g.generator.Generate(ctx, req.Prompt)
	if err != nil {
		return domain.ImageResult{}, fmt.Errorf("%w: generate: %v", domain.ErrProviderFailure, err)
	}

	if g.mirror != nil {
		batch := uuid.NewString()
		for i, u := range urls {
			name := path.Join("generated", batch, fmt.Sprintf("%d.png", i))
			mirrored, mErr := g.mirror.Mirror(ctx, u, name)
			if mErr != nil {
				g.logger.Warn("mirror generated image failed, keeping source url", "error", mErr)
				continue
			}
			urls[i] = mirrored
		}
	}

	return domain.ImageResult{
		URLs:     urls,
		Provider: g.label,
		Source:   domain.SourceGenerated,
	}, nil
}
