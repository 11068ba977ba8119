// Package enrich produces the text parts of a moodboard: a summary and a tag set.
package enrich

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
	"TripIdeas/internal/query"
)

const (
	summarySystemPrompt = "You write a warm two-sentence summary of a group trip idea. Reply with the summary only."
	tagsSystemPrompt    = "You label group trip ideas. Reply with 3 to 5 short lowercase tags separated by commas, nothing else."
	minTags             = 3
	maxTagLength        = 32
)

var defaultTemplates = []string{
	"A trip built around shared moments, easy days and a few stories worth retelling.",
	"An escape that balances adventure with downtime, made for traveling together.",
	"A change of scenery with room for everyone's favorite kind of day.",
	"A getaway full of new places, good food and time well spent with your people.",
}

// Summarizer writes a short idea summary. A configured backend is tried first;
// any backend failure falls back to a template.
type Summarizer struct {
	backend   ports.TextGenerator
	templates []string
	logger    *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSummarizer wires an optional backend. A nil rng picks a random seed.
func NewSummarizer(backend ports.TextGenerator, rng *rand.Rand, log *slog.Logger) *Summarizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Summarizer{backend: backend, templates: defaultTemplates, rng: rng, logger: log}
}

// Summarize always returns non-empty text and a nil error.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	if s.backend != nil {
		text, err := s.backend.Complete(ctx, summarySystemPrompt, prompt)
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return text, nil
		}
		s.logger.Warn("summary backend failed, using template", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates[s.rng.IntN(len(s.templates))], nil
}

// Tagger derives up to five descriptive tags from a prompt.
type Tagger struct {
	backend ports.TextGenerator
	rules   []Rule
	logger  *slog.Logger
}

// NewTagger wires an optional backend; nil rules use DefaultRules.
func NewTagger(backend ports.TextGenerator, rules []Rule, log *slog.Logger) *Tagger {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tagger{backend: backend, rules: rules, logger: log}
}

// Tag returns 3 to 5 distinct tags and a nil error.
func (t *Tagger) Tag(ctx context.Context, prompt string) ([]string, error) {
	if t.backend != nil {
		raw, err := t.backend.Complete(ctx, tagsSystemPrompt, prompt)
		if err == nil {
			if tags := parseTags(raw); len(tags) >= minTags {
				return tags, nil
			}
		}
		t.logger.Warn("tag backend failed, using keyword rules", "error", err)
	}
	return Match(t.rules, prompt), nil
}

// Match applies rules in order, keeping first-match order and dropping duplicates.
// Fewer than three matches are padded with FallbackTags.
func Match(rules []Rule, prompt string) []string {
	text := query.Normalize(prompt)
	tags := newTagSet()
	for _, r := range rules {
		if tags.full() {
			break
		}
		if !query.HasAny(text, r.Keywords) {
			continue
		}
		for _, tag := range r.Tags {
			tags.add(tag)
		}
	}
	for _, tag := range FallbackTags {
		if len(tags.items) >= minTags {
			break
		}
		tags.add(tag)
	}
	return tags.items
}

func parseTags(raw string) []string {
	tags := newTagSet()
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
		tag := strings.ToLower(strings.TrimSpace(part))
		tag = strings.TrimLeft(tag, "#-*• ")
		if tag == "" || len(tag) > maxTagLength {
			continue
		}
		tags.add(tag)
	}
	return tags.items
}

type tagSet struct {
	items []string
	seen  map[string]bool
}

func newTagSet() *tagSet {
	return &tagSet{items: make([]string, 0, domain.MaxTags), seen: map[string]bool{}}
}

func (s *tagSet) add(tag string) {
	if s.full() || s.seen[tag] {
		return
	}
	s.seen[tag] = true
	s.items = append(s.items, tag)
}

func (s *tagSet) full() bool {
	return len(s.items) >= domain.MaxTags
}
