// Package stock searches the Unsplash photo library.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TripIdeas/internal/config"
	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

const maxPerPage = 30

// UnsplashClient implements ports.StockSearcher.
type UnsplashClient struct {
	endpoint  string
	accessKey string
	http      *http.Client
}

var _ ports.StockSearcher = (*UnsplashClient)(nil)

// NewUnsplashClient builds a client from configuration.
func NewUnsplashClient(cfg config.StockConfig) *UnsplashClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.unsplash.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &UnsplashClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		accessKey: cfg.AccessKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type photo struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Color          string    `json:"color"`
	Description    string    `json:"description"`
	AltDescription string    `json:"alt_description"`
	Likes          int       `json:"likes"`
	Downloads      int       `json:"downloads"`
	Views          int       `json:"views"`
	Premium        bool      `json:"premium"`
	Sponsorship    *struct{} `json:"sponsorship"`
	URLs           struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
	User struct {
		Name        string `json:"name"`
		TotalPhotos int    `json:"total_photos"`
		TotalLikes  int    `json:"total_likes"`
	} `json:"user"`
}

// Search returns up to count candidates in provider order.
func (c *UnsplashClient) Search(ctx context.Context, query string, count int, orientation string) ([]domain.CandidateImage, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("%w: unsplash access key missing", domain.ErrNotConfigured)
	}
	if count <= 0 || count > maxPerPage {
		count = maxPerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	if orientation != "" {
		params.Set("orientation", orientation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unsplash error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var body struct {
		Results []photo `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	out := make([]domain.CandidateImage, 0, len(body.Results))
	for _, p := range body.Results {
		out = append(out, p.candidate())
	}
	return out, nil
}

func (p photo) candidate() domain.CandidateImage {
	return domain.CandidateImage{
		ID: p.ID,
		URLs: domain.CandidateURLs{
			Raw:     p.URLs.Raw,
			Full:    p.URLs.Full,
			Regular: p.URLs.Regular,
			Small:   p.URLs.Small,
		},
		Description:    p.Description,
		AltDescription: p.AltDescription,
		Likes:          p.Likes,
		Downloads:      p.Downloads,
		Views:          p.Views,
		Width:          p.Width,
		Height:         p.Height,
		Color:          p.Color,
		CreatedAt:      p.CreatedAt,
		Sponsored:      p.Sponsorship != nil,
		Premium:        p.Premium,
		Photographer: domain.Photographer{
			Name:        p.User.Name,
			TotalPhotos: p.User.TotalPhotos,
			TotalLikes:  p.User.TotalLikes,
		},
	}
}
