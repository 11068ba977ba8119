package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripIdeas/internal/domain"
)

func TestGroupFitScore(t *testing.T) {
	t.Parallel()

	june := 6
	repo := newMemRepo(
		domain.Idea{ID: "summer", MonthHint: &june},
		domain.Idea{ID: "anytime"},
	)
	repo.availability["g1"] = []domain.AvailabilitySample{
		{GroupID: "g1", UserID: "u1", Month: 5, Score: 80},
		{GroupID: "g1", UserID: "u1", Month: 6, Score: 60},
		{GroupID: "g1", UserID: "u2", Month: 6, Score: 80},
		{GroupID: "g1", UserID: "u1", Month: 7, Score: 40},
	}
	svc := NewGroupFit(repo)

	got, err := svc.Score(context.Background(), "summer", "g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 65, *got)

	got, err = svc.Score(context.Background(), "anytime", "g1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Score(context.Background(), "summer", "empty-group")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.Score(context.Background(), "missing", "g1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := svc.ScoreAll(context.Background(), []domain.Idea{repo.ideas["summer"], repo.ideas["anytime"]}, "g1")
	require.NoError(t, err)
	assert.Equal(t, 65, *all["summer"])
	assert.Nil(t, all["anytime"])
}
