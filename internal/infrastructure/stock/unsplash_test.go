package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripIdeas/internal/config"
	"TripIdeas/internal/domain"
	"TripIdeas/internal/ranker"
)

const searchResponse = `{
  "total": 2,
  "results": [
    {
      "id": "abc",
      "created_at": "2026-09-30T10:00:00Z",
      "width": 6000, "height": 4000,
      "color": "#8c7a60",
      "description": null,
      "alt_description": "friends hiking in the alps",
      "likes": 420, "downloads": 900, "views": 10000,
      "sponsorship": {"sponsor": {"name": "Brand"}},
      "urls": {"raw": "https://u/raw", "full": "https://u/full", "regular": "https://u/regular", "small": "https://u/small"},
      "user": {"name": "Ana", "total_photos": 250, "total_likes": 30}
    },
    {
      "id": "def",
      "created_at": "2020-01-01T00:00:00Z",
      "width": 800, "height": 1200,
      "color": "#000000",
      "description": "empty road",
      "sponsorship": null,
      "urls": {"small": "https://u/def-small"},
      "user": {"name": "Bo"}
    }
  ]
}`

func TestSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		assert.Equal(t, "alps ski resort", r.URL.Query().Get("query"))
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		_, _ = w.Write([]byte(searchResponse))
	}))
	t.Cleanup(srv.Close)

	client := NewUnsplashClient(config.StockConfig{Endpoint: srv.URL, AccessKey: "key"})
	got, err := client.Search(context.Background(), "alps ski resort", 50, "landscape")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "abc", first.ID)
	assert.Equal(t, "friends hiking in the alps", first.AltDescription)
	assert.Empty(t, first.Description)
	assert.True(t, first.Sponsored)
	assert.Equal(t, 6000, first.Width)
	assert.Equal(t, time.Date(2026, 9, 30, 10, 0, 0, 0, time.UTC), first.CreatedAt.UTC())
	assert.Equal(t, domain.Photographer{Name: "Ana", TotalPhotos: 250, TotalLikes: 30}, first.Photographer)
	assert.Equal(t, "https://u/full", ranker.BestURL(first))

	assert.False(t, got[1].Sponsored)
	assert.Equal(t, "https://u/def-small", ranker.BestURL(got[1]))
}

func TestSearchErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["Rate Limit Exceeded"]}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := NewUnsplashClient(config.StockConfig{Endpoint: srv.URL, AccessKey: "key"}).Search(context.Background(), "q", 10, "")
	assert.ErrorContains(t, err, "Rate Limit Exceeded")

	_, err = NewUnsplashClient(config.StockConfig{Endpoint: srv.URL}).Search(context.Background(), "q", 10, "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
