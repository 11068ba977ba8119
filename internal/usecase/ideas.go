package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

// ErrInvalidIdea rejects ideas that cannot be enriched.
var ErrInvalidIdea = errors.New("invalid idea")

// IdeaCreator stores new ideas.
type IdeaCreator interface {
	CreateIdea(ctx context.Context, idea domain.Idea) error
}

// NewIdea is the user input of the create path.
type NewIdea struct {
	GroupID    string
	Prompt     string
	MonthHint  *int
	BudgetTier string
}

// Ideas stores DRAFT ideas, announces them and hands them to enrichment
// without waiting for it.
type Ideas struct {
	store  IdeaCreator
	queue  ports.EnrichmentQueue
	events *Broadcaster
	logger *slog.Logger
	now    func() time.Time
}

func NewIdeas(store IdeaCreator, queue ports.EnrichmentQueue, events *Broadcaster, log *slog.Logger) *Ideas {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ideas{store: store, queue: queue, events: events, logger: log, now: time.Now}
}

// Create returns the stored idea. A failed submission is only logged: the
// idea stays in DRAFT and the retry sweeper picks it up later.
func (s *Ideas) Create(ctx context.Context, in NewIdea) (domain.Idea, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return domain.Idea{}, fmt.Errorf("%w: prompt is required", ErrInvalidIdea)
	}
	if in.GroupID == "" {
		return domain.Idea{}, fmt.Errorf("%w: group is required", ErrInvalidIdea)
	}
	if in.MonthHint != nil && (*in.MonthHint < 1 || *in.MonthHint > 12) {
		return domain.Idea{}, fmt.Errorf("%w: month hint %d out of range", ErrInvalidIdea, *in.MonthHint)
	}

	now := s.now().UTC()
	idea := domain.Idea{
		ID:         uuid.NewString(),
		GroupID:    in.GroupID,
		Prompt:     prompt,
		MonthHint:  in.MonthHint,
		BudgetTier: in.BudgetTier,
		Status:     domain.StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateIdea(ctx, idea); err != nil {
		return domain.Idea{}, fmt.Errorf("create idea: %w", err)
	}

	s.events.Emit(ctx, domain.EventIdeaCreated, idea.ID, map[string]any{
		"group_id": idea.GroupID,
		"prompt":   idea.Prompt,
	})

	if err := s.queue.EnqueueEnrich(ctx, idea.ID); err != nil {
		s.logger.Warn("enrichment submission failed, leaving idea for the sweeper", "idea_id", idea.ID, "error", err)
	}
	return idea, nil
}
