package usecase

import (
	"context"
	"fmt"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/groupfit"
	"TripIdeas/internal/ports"
)

// GroupFit answers read-path questions about how ideas suit a group's calendar.
type GroupFit struct {
	repo ports.IdeaRepository
}

// NewGroupFit wires the record store.
func NewGroupFit(repo ports.IdeaRepository) *GroupFit {
	return &GroupFit{repo: repo}
}

// Score returns nil when there is no signal (no month hint or no availability).
func (g *GroupFit) Score(ctx context.Context, ideaID, groupID string) (*int, error) {
	idea, err := g.repo.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("load idea %s: %w", ideaID, err)
	}
	if idea.MonthHint == nil {
		return nil, nil
	}

	samples, err := g.repo.ListAvailability(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list availability for %s: %w", groupID, err)
	}
	return groupfit.Score(idea.MonthHint, samples), nil
}

// ScoreAll scores already loaded ideas against one availability read.
func (g *GroupFit) ScoreAll(ctx context.Context, ideas []domain.Idea, groupID string) (map[string]*int, error) {
	samples, err := g.repo.ListAvailability(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list availability for %s: %w", groupID, err)
	}
	return groupfit.ScoreIdeas(ideas, samples), nil
}
