package query

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		prompt string
		want   string
	}{
		{"location with season and social", "Ski week in the Alps with friends!", "alps ski resort snow chalet friends having fun together"},
		{"location without seasonal variant", "Madrid in summer", "summer spain tapas bar old town people enjoying"},
		{"location with social only", "Lisbon with the family", "lisbon tram terrace view family enjoying together"},
		{"activity with season", "Hiking trip this autumn", "hiking autumn forest trail people enjoying"},
		{"activity seasonal variant", "Beach in December", "winter sun beach escape people enjoying"},
		{"meaningful words fallback", "Explore ancient ruins quietly", "explore ancient ruins travel experience"},
		{"word boundary", "Romeo's party", "romeo party travel experience"},
		{"generic for stopwords only", "we go to", "people enjoying travel adventure"},
		{"generic for empty", "   ", "people enjoying travel adventure"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Synthesize(tc.prompt))
		})
	}
}

func TestSynthesizeInSeasonUsesFallbackOnlyWhenPromptIsSilent(t *testing.T) {
	t.Parallel()

	s := NewSynthesizer(DefaultTable(), nil)
	assert.Equal(t, "paris cherry blossoms seine walk people enjoying", s.SynthesizeInSeason("Paris getaway", "spring"))
	assert.Equal(t, "paris christmas lights cafe people enjoying", s.SynthesizeInSeason("Paris at christmas", "spring"))
}

func TestPremiumAppendsOneAdjective(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	s := NewSynthesizer(table, rand.New(rand.NewPCG(1, 2)))

	plain := s.Synthesize("Tokyo food tour")
	for i := 0; i < 20; i++ {
		premium := s.Premium("Tokyo food tour")
		require.True(t, strings.HasPrefix(premium, plain+" "), premium)
		adj := strings.TrimPrefix(premium, plain+" ")
		assert.Contains(t, table.Adjectives, adj)
	}
}

func TestTopic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "beach", Topic("Island hopping"))
	assert.Equal(t, "mountain", Topic("skiing weekend"))
	assert.Equal(t, "city", Topic("London museums"))
	assert.Equal(t, "europe", Topic("Rome and Florence"))
	assert.Equal(t, "travel", Topic("something else"))
}

func TestSeasonForMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "winter", SeasonForMonth(1))
	assert.Equal(t, "spring", SeasonForMonth(4))
	assert.Equal(t, "summer", SeasonForMonth(8))
	assert.Equal(t, "autumn", SeasonForMonth(11))
	assert.Equal(t, "", SeasonForMonth(13))
}

func TestLoadTableOverridesSections(t *testing.T) {
	t.Parallel()

	doc := `
locations:
  - keywords: ["atlantis"]
    phrase: "underwater city"
generic: "somewhere nice"
`
	table, err := LoadTable(strings.NewReader(doc))
	require.NoError(t, err)

	s := NewSynthesizer(table, nil)
	assert.Equal(t, "underwater city people enjoying", s.Synthesize("Atlantis"))
	assert.Equal(t, "somewhere nice", s.Synthesize(""))
	// untouched sections keep their defaults
	assert.Equal(t, "tropical beach relaxing people enjoying", s.Synthesize("beach"))
}
