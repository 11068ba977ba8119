// Package imagegen talks to an OpenAI-compatible image generation service.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TripIdeas/internal/config"
	"TripIdeas/internal/ports"
)

// Client generates moodboard images from a text prompt.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	count    int
	size     string
	http     *http.Client
}

var _ ports.ImageGenerator = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.ImageGenConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	count := cfg.Count
	if count <= 0 {
		count = 4
	}
	size := cfg.Size
	if size == "" {
		size = "1792x1024"
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		count:    count,
		size:     size,
		http:     &http.Client{Timeout: timeout},
	}
}

// Generate returns the URLs of freshly generated images.
func (c *Client) Generate(ctx context.Context, prompt string) ([]string, error) {
	payload := map[string]any{
		"prompt": "Travel moodboard photo, people enjoying the trip: " + prompt,
		"n":      c.count,
		"size":   c.size,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	var resp struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/images/generations", payload, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL != "" {
			urls = append(urls, d.URL)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("image service returned no urls")
	}
	return urls, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
