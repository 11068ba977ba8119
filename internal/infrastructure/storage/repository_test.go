package storage

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripIdeas/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := Open(DialectSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db, DialectSQLite)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestIdeaRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	june := 6

	require.NoError(t, repo.CreateIdea(ctx, domain.Idea{ID: "i1", GroupID: "g1", Prompt: "Beach week", MonthHint: &june, BudgetTier: "mid"}))

	idea, err := repo.GetIdea(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "g1", idea.GroupID)
	assert.Equal(t, domain.StatusDraft, idea.Status)
	require.NotNil(t, idea.MonthHint)
	assert.Equal(t, 6, *idea.MonthHint)
	assert.Equal(t, "mid", idea.BudgetTier)
	assert.Nil(t, idea.Summary)
	assert.Empty(t, idea.Palette)
	assert.Empty(t, idea.Tags)

	summary := "Sun and sand."
	require.NoError(t, repo.UpdateIdea(ctx, "i1", domain.IdeaUpdate{
		Status:  domain.StatusPtr(domain.StatusPublished),
		Palette: []string{"#aaaaaa", "#bbbbbb"},
		Summary: &summary,
		Tags:    []string{"beach", "water-sports"},
	}))

	idea, err = repo.GetIdea(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, idea.Status)
	assert.Equal(t, []string{"#aaaaaa", "#bbbbbb"}, idea.Palette)
	assert.Equal(t, []string{"beach", "water-sports"}, idea.Tags)
	require.NotNil(t, idea.Summary)
	assert.Equal(t, summary, *idea.Summary)
}

func TestUpdateIdeaLeavesUnsetFields(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateIdea(ctx, domain.Idea{ID: "i1", GroupID: "g1", Prompt: "p", Tags: []string{"keep"}}))

	require.NoError(t, repo.UpdateIdea(ctx, "i1", domain.IdeaUpdate{Status: domain.StatusPtr(domain.StatusDraft)}))

	idea, err := repo.GetIdea(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, idea.Tags)
}

func TestMissingIdea(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	_, err := repo.GetIdea(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.UpdateIdea(context.Background(), "nope", domain.IdeaUpdate{Status: domain.StatusPtr(domain.StatusDraft)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImagesAreOrdered(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateIdea(ctx, domain.Idea{ID: "i1", GroupID: "g1", Prompt: "p"}))

	for _, order := range []int{2, 0, 1} {
		require.NoError(t, repo.CreateImage(ctx, domain.Image{
			ID: fmt.Sprintf("img-%d", order), IdeaID: "i1", URL: fmt.Sprintf("https://img/%d.jpg", order),
			Source: domain.SourceStock, Provider: "stock:unsplash", Order: order,
		}))
	}

	images, err := repo.ListImages(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, images, 3)
	for i, img := range images {
		assert.Equal(t, i, img.Order)
		assert.Equal(t, domain.SourceStock, img.Source)
	}

	err = repo.CreateImage(ctx, domain.Image{ID: "dup", IdeaID: "i1", URL: "x", Source: domain.SourceStock, Provider: "p", Order: 1})
	assert.Error(t, err, "position is unique per idea")

	none, err := repo.ListImages(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAvailability(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AddAvailability(ctx, domain.AvailabilitySample{GroupID: "g1", UserID: "u1", Month: 6, Score: 10}))
	require.NoError(t, repo.AddAvailability(ctx, domain.AvailabilitySample{GroupID: "g1", UserID: "u1", Month: 6, Score: 60}))
	require.NoError(t, repo.AddAvailability(ctx, domain.AvailabilitySample{GroupID: "g1", UserID: "u2", Month: 5, Score: 80}))
	require.NoError(t, repo.AddAvailability(ctx, domain.AvailabilitySample{GroupID: "g2", UserID: "u3", Month: 5, Score: 5}))

	samples, err := repo.ListAvailability(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []domain.AvailabilitySample{
		{GroupID: "g1", UserID: "u2", Month: 5, Score: 80},
		{GroupID: "g1", UserID: "u1", Month: 6, Score: 60},
	}, samples)
}

func TestListStaleDrafts(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "older", "fresh", "published"} {
		created := base.Add(-time.Duration(i+1) * time.Hour)
		if id == "fresh" {
			created = base.Add(time.Hour)
		}
		require.NoError(t, repo.CreateIdea(ctx, domain.Idea{ID: id, GroupID: "g1", Prompt: "p", CreatedAt: created}))
	}
	require.NoError(t, repo.UpdateIdea(ctx, "published", domain.IdeaUpdate{Status: domain.StatusPtr(domain.StatusPublished)}))

	ids, err := repo.ListStaleDrafts(ctx, base, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"older", "old"}, ids)

	ids, err = repo.ListStaleDrafts(ctx, base, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"older"}, ids)
}

func TestDialectPlaceholders(t *testing.T) {
	t.Parallel()

	cases := map[Dialect]string{
		DialectPostgres: "SELECT id FROM ideas WHERE id = $1",
		DialectSQLite:   "SELECT id FROM ideas WHERE id = ?",
	}
	for dialect, want := range cases {
		repo := NewRepository((*sql.DB)(nil), dialect)
		query, _, err := repo.sb.Select("id").From("ideas").Where("id = ?", "x").ToSql()
		require.NoError(t, err)
		assert.Equal(t, want, query, string(dialect))
	}
}
