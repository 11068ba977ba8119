package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/query"
)

// PlaceholderConfig controls the deterministic last-resort images.
type PlaceholderConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Count   int    `yaml:"count"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

// Placeholder builds seeded placeholder URLs keyed by time and prompt topic.
type Placeholder struct {
	cfg   PlaceholderConfig
	synth *query.Synthesizer
	now   func() time.Time
}

// NewPlaceholder fills zero config values with defaults (picsum seeds, 4 images, 1600x900).
func NewPlaceholder(cfg PlaceholderConfig, synth *query.Synthesizer) *Placeholder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://picsum.photos/seed"
	}
	if cfg.Count <= 0 {
		cfg.Count = 4
	}
	if cfg.Width <= 0 {
		cfg.Width = 1600
	}
	if cfg.Height <= 0 {
		cfg.Height = 900
	}
	if synth == nil {
		synth = query.NewSynthesizer(query.DefaultTable(), nil)
	}
	return &Placeholder{cfg: cfg, synth: synth, now: time.Now}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

// Acquire always succeeds with Count distinct URLs.
func (p *Placeholder) Acquire(_ context.Context, req Request) (domain.ImageResult, error) {
	topic := p.synth.Topic(req.Prompt)
	stamp := p.now().UnixMilli()
	base := strings.TrimSuffix(p.cfg.BaseURL, "/")

	urls := make([]string, 0, p.cfg.Count)
	for i := 0; i < p.cfg.Count; i++ {
		urls = append(urls, fmt.Sprintf("%s/%s-%d-%d/%d/%d", base, topic, stamp, i, p.cfg.Width, p.cfg.Height))
	}

	return domain.ImageResult{
		URLs:     urls,
		Provider: "placeholder:" + topic,
		Source:   domain.SourceStock,
	}, nil
}
