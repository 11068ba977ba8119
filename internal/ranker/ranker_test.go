package ranker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripIdeas/internal/domain"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestRanker() *Ranker {
	r := New(Config{})
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestScoreHumanPresenceAddsExactlyTwenty(t *testing.T) {
	t.Parallel()

	r := newTestRanker()
	base := domain.CandidateImage{
		Description: "snowy mountain village at dusk",
		Likes:       350,
		Width:       4000,
		Height:      2500,
		Color:       "#7a8ca0",
	}
	withPeople := base
	withPeople.Description = "snowy mountain village at dusk with friends"

	assert.InDelta(t, r.Score(base)+20, r.Score(withPeople), 1e-9)
}

func TestScoreComponents(t *testing.T) {
	t.Parallel()

	r := newTestRanker()

	cases := []struct {
		name string
		c    domain.CandidateImage
		want float64
	}{
		{"empty", domain.CandidateImage{}, 0},
		{"emotional", domain.CandidateImage{AltDescription: "Laughing on the pier"}, 15},
		{"activity", domain.CandidateImage{Description: "skiing"}, 12},
		{"lifestyle", domain.CandidateImage{Description: "cozy cabin"}, 10},
		{"all keyword groups", domain.CandidateImage{Description: "happy couple hiking to a romantic cabin"}, 57},
		{"engagement capped", domain.CandidateImage{Likes: 5000, Downloads: 5000, Views: 1_000_000}, 13},
		{"engagement partial", domain.CandidateImage{Likes: 100, Downloads: 50, Views: 1000}, 1.5},
		{"landscape high resolution", domain.CandidateImage{Width: 6000, Height: 4000}, 10},
		{"portrait low resolution", domain.CandidateImage{Width: 800, Height: 1200}, 0},
		{"mid brightness", domain.CandidateImage{Color: "#808080"}, 5},
		{"too dark", domain.CandidateImage{Color: "#050505"}, 0},
		{"too bright", domain.CandidateImage{Color: "#fafafa"}, 0},
		{"flags", domain.CandidateImage{Sponsored: true, Premium: true}, 3},
		{"fresh", domain.CandidateImage{CreatedAt: fixedNow.Add(-72 * time.Hour)}, 2},
		{"recent", domain.CandidateImage{CreatedAt: fixedNow.Add(-20 * 24 * time.Hour)}, 1},
		{"old", domain.CandidateImage{CreatedAt: fixedNow.Add(-90 * 24 * time.Hour)}, 0},
		{"photographer", domain.CandidateImage{Photographer: domain.Photographer{TotalPhotos: 500, TotalLikes: 20000}}, 2},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, r.Score(tc.c), 1e-9)
		})
	}
}

func TestRankPrimarySelection(t *testing.T) {
	t.Parallel()

	r := newTestRanker()
	var cands []domain.CandidateImage
	for i := 0; i < 5; i++ {
		cands = append(cands, domain.CandidateImage{ID: fmt.Sprint(i), Description: "people at the lake"})
	}
	cands = append(cands, domain.CandidateImage{ID: "top", Description: "happy people at the lake"})

	sel := r.Rank(cands)
	require.Len(t, sel.Images, 4)
	assert.False(t, sel.Relaxed)
	assert.Equal(t, 6, sel.PrimaryCount)
	assert.Equal(t, "top", sel.Images[0].Candidate.ID)
	assert.Equal(t, []string{"0", "1", "2"}, []string{
		sel.Images[1].Candidate.ID, sel.Images[2].Candidate.ID, sel.Images[3].Candidate.ID,
	})
}

func TestRankRelaxesWhenFewPassPrimary(t *testing.T) {
	t.Parallel()

	r := newTestRanker()
	cands := make([]domain.CandidateImage, 6)
	for i := range cands {
		cands[i] = domain.CandidateImage{ID: fmt.Sprint(i), Description: "skiing"}
	}

	sel := r.Rank(cands)
	assert.True(t, sel.Relaxed)
	assert.Equal(t, 0, sel.PrimaryCount)
	require.Len(t, sel.Images, 4)
	for i, img := range sel.Images {
		assert.Equal(t, i, img.Index)
		assert.InDelta(t, 12, img.Score, 1e-9)
	}
}

func TestRankRelaxedPassReconsidersFullSet(t *testing.T) {
	t.Parallel()

	r := newTestRanker()
	cands := []domain.CandidateImage{
		{ID: "weak", Description: "cozy"},
		{ID: "low", Description: "empty road"},
		{ID: "strong-a", Description: "friends enjoying dinner"},
		{ID: "mid", Description: "hiking"},
		{ID: "strong-b", Description: "family laughing"},
	}

	sel := r.Rank(cands)
	assert.True(t, sel.Relaxed)
	assert.Equal(t, 2, sel.PrimaryCount)

	ids := make([]string, 0, len(sel.Images))
	for _, img := range sel.Images {
		ids = append(ids, img.Candidate.ID)
	}
	assert.Equal(t, []string{"strong-a", "strong-b", "mid", "weak"}, ids)
}

func TestRankConfigurableThresholds(t *testing.T) {
	t.Parallel()

	r := New(Config{PrimaryThreshold: 30, RelaxedThreshold: 25, TopN: 2})
	sel := r.Rank([]domain.CandidateImage{
		{ID: "a", Description: "people"},
		{ID: "b", Description: "happy people"},
	})
	require.Len(t, sel.Images, 1)
	assert.Equal(t, "b", sel.Images[0].Candidate.ID)
	assert.Equal(t, 2, r.TopN())
}

func TestPartialWeightsKeepOtherDefaults(t *testing.T) {
	t.Parallel()

	r := New(Config{Weights: Weights{HumanPresence: 40}})
	def := DefaultConfig().Weights
	assert.Equal(t, Weights{
		HumanPresence: 40,
		Emotional:     def.Emotional,
		Activity:      def.Activity,
		Lifestyle:     def.Lifestyle,
		Brightness:    def.Brightness,
		Landscape:     def.Landscape,
	}, r.cfg.Weights)

	assert.InDelta(t, 40, r.Score(domain.CandidateImage{Description: "friends"}), 1e-9)
	assert.InDelta(t, 15, r.Score(domain.CandidateImage{AltDescription: "Laughing on the pier"}), 1e-9)
}

func TestBestURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "full", BestURL(domain.CandidateImage{URLs: domain.CandidateURLs{Raw: "raw", Full: "full", Regular: "regular", Small: "small"}}))
	assert.Equal(t, "raw", BestURL(domain.CandidateImage{URLs: domain.CandidateURLs{Raw: "raw", Regular: "regular"}}))
	assert.Equal(t, "regular", BestURL(domain.CandidateImage{URLs: domain.CandidateURLs{Regular: "regular", Small: "small"}}))
	assert.Equal(t, "small", BestURL(domain.CandidateImage{URLs: domain.CandidateURLs{Small: "small"}}))
	assert.Equal(t, "", BestURL(domain.CandidateImage{}))
}

func TestSelectionURLs(t *testing.T) {
	t.Parallel()

	sel := Selection{Images: []Scored{
		{Candidate: domain.CandidateImage{URLs: domain.CandidateURLs{Full: "a"}}},
		{Candidate: domain.CandidateImage{}},
		{Candidate: domain.CandidateImage{URLs: domain.CandidateURLs{Small: "b"}}},
	}}
	assert.Equal(t, []string{"a", "b"}, sel.URLs())
}
