package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
	"TripIdeas/internal/provider"
)

const defaultLockTTL = 2 * time.Minute

// ImageAcquirer returns images for a prompt and never fails (see provider.Chain).
type ImageAcquirer interface {
	Acquire(ctx context.Context, req provider.Request) domain.ImageResult
}

// PaletteExtractor always returns a full palette.
type PaletteExtractor interface {
	Extract(ctx context.Context, imageURLs []string) []string
}

// Summarizer writes the idea summary.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Tagger derives the idea tags.
type Tagger interface {
	Tag(ctx context.Context, prompt string) ([]string, error)
}

// EnricherDeps wires the driven adapters into the orchestrator.
// Locker and Events are optional.
type EnricherDeps struct {
	Repository ports.IdeaRepository
	Images     ImageAcquirer
	Palette    PaletteExtractor
	Summarizer Summarizer
	Tagger     Tagger
	Locker     ports.Locker
	LockTTL    time.Duration
	Events     *Broadcaster
	Logger     *slog.Logger
}

// Enricher turns a DRAFT idea into a PUBLISHED moodboard.
type Enricher struct {
	repo       ports.IdeaRepository
	images     ImageAcquirer
	palette    PaletteExtractor
	summarizer Summarizer
	tagger     Tagger
	locker     ports.Locker
	lockTTL    time.Duration
	events     *Broadcaster
	logger     *slog.Logger
	now        func() time.Time
}

// NewEnricher constructs the orchestration component.
func NewEnricher(deps EnricherDeps) *Enricher {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Enricher{
		repo:       deps.Repository,
		images:     deps.Images,
		palette:    deps.Palette,
		summarizer: deps.Summarizer,
		tagger:     deps.Tagger,
		locker:     deps.Locker,
		lockTTL:    ttl,
		events:     deps.Events,
		logger:     log,
		now:        time.Now,
	}
}

// Enrich is safe to call repeatedly. A PUBLISHED idea that already has images
// is left alone; any failure after loading leaves the idea in DRAFT.
// Errors are always *domain.EnrichError.
func (e *Enricher) Enrich(ctx context.Context, ideaID string) error {
	log := e.logger.With("idea_id", ideaID)

	idea, images, err := e.load(ctx, ideaID)
	if err != nil {
		return err
	}
	if done(idea, images) {
		log.Debug("idea already enriched")
		return nil
	}

	release, err := e.lock(ctx, ideaID)
	if err != nil {
		return err
	}
	defer release()

	if e.locker != nil {
		// another run may have finished between the first check and the lock
		idea, images, err = e.load(ctx, ideaID)
		if err != nil {
			return err
		}
		if done(idea, images) {
			return nil
		}
	}

	log.Info("enrichment started", "reuse_images", len(images) > 0)
	started := e.now()

	update, err := e.run(ctx, idea, images)
	if err == nil {
		err = e.repo.UpdateIdea(ctx, ideaID, update)
		if err != nil {
			err = fmt.Errorf("publish idea: %w", err)
		}
	}
	if err != nil {
		log.Warn("enrichment failed, reverting to draft", "error", err)
		e.revert(ctx, ideaID, log)
		e.events.Emit(ctx, domain.EventMoodboardFailed, ideaID, map[string]any{"error": err.Error()})
		return &domain.EnrichError{IdeaID: ideaID, Code: domain.CodeEnrichmentFailed, Err: err}
	}

	log.Info("enrichment finished", "duration", e.now().Sub(started), "tags", update.Tags)
	e.events.Emit(ctx, domain.EventMoodboardCompleted, ideaID, map[string]any{
		"group_id": idea.GroupID,
		"palette":  update.Palette,
		"tags":     update.Tags,
	})
	return nil
}

func (e *Enricher) load(ctx context.Context, ideaID string) (domain.Idea, []domain.Image, error) {
	idea, err := e.repo.GetIdea(ctx, ideaID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Idea{}, nil, &domain.EnrichError{IdeaID: ideaID, Code: domain.CodeNotFound, Err: err}
	}
	if err != nil {
		return domain.Idea{}, nil, &domain.EnrichError{IdeaID: ideaID, Code: domain.CodeEnrichmentFailed, Err: fmt.Errorf("load idea: %w", err)}
	}

	images, err := e.repo.ListImages(ctx, ideaID)
	if err != nil {
		return domain.Idea{}, nil, &domain.EnrichError{IdeaID: ideaID, Code: domain.CodeEnrichmentFailed, Err: fmt.Errorf("list images: %w", err)}
	}
	return idea, images, nil
}

func done(idea domain.Idea, images []domain.Image) bool {
	return idea.Status == domain.StatusPublished && len(images) > 0
}

// lock takes the per-idea processing flag. Lock backend errors do not block
// enrichment; idempotency still protects the idea.
func (e *Enricher) lock(ctx context.Context, ideaID string) (func(), error) {
	noop := func() {}
	if e.locker == nil {
		return noop, nil
	}

	unlock, ok, err := e.locker.Acquire(ctx, "enrich:"+ideaID, e.lockTTL)
	if err != nil {
		e.logger.Warn("processing lock unavailable, continuing without it", "idea_id", ideaID, "error", err)
		return noop, nil
	}
	if !ok {
		return nil, &domain.EnrichError{IdeaID: ideaID, Code: domain.CodeAlreadyProcessing, Err: domain.ErrAlreadyProcessing}
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("release processing lock", "idea_id", ideaID, "error", err)
		}
	}, nil
}

func (e *Enricher) run(ctx context.Context, idea domain.Idea, existing []domain.Image) (domain.IdeaUpdate, error) {
	urls, err := e.ensureImages(ctx, idea, existing)
	if err != nil {
		return domain.IdeaUpdate{}, err
	}

	var (
		palette []string
		summary string
		tags    []string
		g       errgroup.Group
	)
	g.Go(func() error {
		palette = e.palette.Extract(ctx, urls)
		return nil
	})
	g.Go(func() error {
		s, err := e.summarizer.Summarize(ctx, idea.Prompt)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		summary = s
		return nil
	})
	g.Go(func() error {
		t, err := e.tagger.Tag(ctx, idea.Prompt)
		if err != nil {
			return fmt.Errorf("tag: %w", err)
		}
		tags = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.IdeaUpdate{}, err
	}
	if summary == "" {
		return domain.IdeaUpdate{}, errors.New("summarize: empty summary")
	}

	return domain.IdeaUpdate{
		Status:  domain.StatusPtr(domain.StatusPublished),
		Palette: palette,
		Summary: &summary,
		Tags:    tags,
	}, nil
}

// ensureImages reuses images left by an earlier partial run, otherwise acquires
// and persists new ones in order starting at zero.
func (e *Enricher) ensureImages(ctx context.Context, idea domain.Idea, existing []domain.Image) ([]string, error) {
	if len(existing) > 0 {
		sorted := append([]domain.Image(nil), existing...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
		urls := make([]string, len(sorted))
		for i, img := range sorted {
			urls[i] = img.URL
		}
		return urls, nil
	}

	res := e.images.Acquire(ctx, provider.Request{Prompt: idea.Prompt, MonthHint: idea.MonthHint})
	if len(res.URLs) == 0 {
		return nil, errors.New("acquire images: no images returned")
	}

	now := e.now().UTC()
	for i, u := range res.URLs {
		img := domain.Image{
			ID:        uuid.NewString(),
			IdeaID:    idea.ID,
			URL:       u,
			Source:    res.Source,
			Provider:  res.Provider,
			Order:     i,
			CreatedAt: now,
		}
		if err := e.repo.CreateImage(ctx, img); err != nil {
			return nil, fmt.Errorf("create image %d: %w", i, err)
		}
	}
	e.logger.Info("images attached", "idea_id", idea.ID, "provider", res.Provider, "count", len(res.URLs))
	return res.URLs, nil
}

func (e *Enricher) revert(ctx context.Context, ideaID string, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := e.repo.UpdateIdea(ctx, ideaID, domain.IdeaUpdate{Status: domain.StatusPtr(domain.StatusDraft)}); err != nil {
		log.Error("revert idea to draft", "error", err)
	}
}
