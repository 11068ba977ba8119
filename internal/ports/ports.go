package ports

import (
	"context"
	"time"

	"TripIdeas/internal/domain"
)

// IdeaRepository is the record store the pipeline reads from and writes back to.
type IdeaRepository interface {
	GetIdea(ctx context.Context, id string) (domain.Idea, error)
	UpdateIdea(ctx context.Context, id string, update domain.IdeaUpdate) error
	CreateImage(ctx context.Context, image domain.Image) error
	ListImages(ctx context.Context, ideaID string) ([]domain.Image, error)
	ListAvailability(ctx context.Context, groupID string) ([]domain.AvailabilitySample, error)
	ListStaleDrafts(ctx context.Context, createdBefore time.Time, limit int) ([]string, error)
}

// ImageGenerator creates images from a prompt (DALL-E style APIs).
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]string, error)
}

// StockSearcher queries a stock photo library.
type StockSearcher interface {
	Search(ctx context.Context, query string, count int, orientation string) ([]domain.CandidateImage, error)
}

// TextGenerator is a chat-completion backend used by summary and tag enrichers.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ObjectStore copies a remote object into durable storage and returns its new URL.
type ObjectStore interface {
	Mirror(ctx context.Context, sourceURL, objectName string) (string, error)
}

// EventSink receives notification or analytics events. Failures never fail the pipeline.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Locker grants a short-lived exclusive flag for a key.
// ok is false when another holder owns the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// EnrichmentQueue submits durable enrichment tasks.
type EnrichmentQueue interface {
	EnqueueEnrich(ctx context.Context, ideaID string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
