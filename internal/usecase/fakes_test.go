package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/provider"
)

type memRepo struct {
	mu           sync.Mutex
	ideas        map[string]domain.Idea
	images       map[string][]domain.Image
	availability map[string][]domain.AvailabilitySample
	stale        []string

	creates   int
	updates   []domain.IdeaUpdate
	updateErr func(domain.IdeaUpdate) error
	createErr error
}

func newMemRepo(ideas ...domain.Idea) *memRepo {
	r := &memRepo{
		ideas:        map[string]domain.Idea{},
		images:       map[string][]domain.Image{},
		availability: map[string][]domain.AvailabilitySample{},
	}
	for _, idea := range ideas {
		r.ideas[idea.ID] = idea
	}
	return r
}

func (r *memRepo) GetIdea(_ context.Context, id string) (domain.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idea, ok := r.ideas[id]
	if !ok {
		return domain.Idea{}, domain.ErrNotFound
	}
	return idea, nil
}

func (r *memRepo) UpdateIdea(_ context.Context, id string, u domain.IdeaUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	if r.updateErr != nil {
		if err := r.updateErr(u); err != nil {
			return err
		}
	}
	idea := r.ideas[id]
	if u.Status != nil {
		idea.Status = *u.Status
	}
	if u.Palette != nil {
		idea.Palette = u.Palette
	}
	if u.Summary != nil {
		idea.Summary = u.Summary
	}
	if u.Tags != nil {
		idea.Tags = u.Tags
	}
	r.ideas[id] = idea
	return nil
}

func (r *memRepo) CreateImage(_ context.Context, img domain.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	r.images[img.IdeaID] = append(r.images[img.IdeaID], img)
	return nil
}

func (r *memRepo) ListImages(_ context.Context, ideaID string) ([]domain.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Image(nil), r.images[ideaID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memRepo) ListAvailability(_ context.Context, groupID string) ([]domain.AvailabilitySample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.availability[groupID], nil
}

func (r *memRepo) ListStaleDrafts(_ context.Context, _ time.Time, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stale) > limit {
		return r.stale[:limit], nil
	}
	return r.stale, nil
}

func (r *memRepo) idea(id string) domain.Idea {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ideas[id]
}

type acquireFunc func(ctx context.Context, req provider.Request) domain.ImageResult

func (f acquireFunc) Acquire(ctx context.Context, req provider.Request) domain.ImageResult {
	return f(ctx, req)
}

type paletteFunc func(ctx context.Context, urls []string) []string

func (f paletteFunc) Extract(ctx context.Context, urls []string) []string { return f(ctx, urls) }

type summarizeFunc func(ctx context.Context, prompt string) (string, error)

func (f summarizeFunc) Summarize(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type tagFunc func(ctx context.Context, prompt string) ([]string, error)

func (f tagFunc) Tag(ctx context.Context, prompt string) ([]string, error) { return f(ctx, prompt) }

type sinkFunc func(ctx context.Context, e domain.Event) error

func (f sinkFunc) Publish(ctx context.Context, e domain.Event) error { return f(ctx, e) }

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Publish(_ context.Context, e domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

type lockerFunc func(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error)

func (f lockerFunc) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	return f(ctx, key, ttl)
}

type queueFunc func(ctx context.Context, ideaID string) error

func (f queueFunc) EnqueueEnrich(ctx context.Context, ideaID string) error { return f(ctx, ideaID) }

type runnerFunc func(ctx context.Context, ideaID string) error

func (f runnerFunc) Enrich(ctx context.Context, ideaID string) error { return f(ctx, ideaID) }
