package query

import (
	"math/rand/v2"
	"strings"
	"sync"
	"unicode"
)

// Synthesizer turns free-text trip prompts into stock-search phrases.
type Synthesizer struct {
	table     Table
	stopwords map[string]struct{}

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer builds a synthesizer over the given table. A nil rng picks a random seed.
func NewSynthesizer(table Table, rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	stop := make(map[string]struct{}, len(table.Stopwords))
	for _, w := range table.Stopwords {
		stop[w] = struct{}{}
	}
	return &Synthesizer{table: table, stopwords: stop, rng: rng}
}

var defaultSynth = NewSynthesizer(DefaultTable(), nil)

// Synthesize builds a query from prompt using the built-in table.
func Synthesize(prompt string) string {
	return defaultSynth.Synthesize(prompt)
}

// Topic buckets prompt using the built-in table.
func Topic(prompt string) string {
	return defaultSynth.Topic(prompt)
}

// Synthesize returns exactly one search phrase for prompt. It is deterministic.
func (s *Synthesizer) Synthesize(prompt string) string {
	return s.SynthesizeInSeason(prompt, "")
}

// SynthesizeInSeason is Synthesize with a season to assume when the prompt names none.
func (s *Synthesizer) SynthesizeInSeason(prompt, fallbackSeason string) string {
	text := normalize(prompt)
	if text == "" {
		return s.table.Generic
	}

	season := s.detect(text, s.table.Seasons, seasonOrder)
	if season == "" {
		season = fallbackSeason
	}
	social := s.detect(text, s.table.Social, socialOrder)

	if e, ok := match(text, s.table.Locations); ok {
		return s.compose(e, season, social)
	}
	if e, ok := match(text, s.table.Activities); ok {
		return s.compose(e, season, social)
	}

	words := s.meaningful(text, 3)
	if len(words) > 0 {
		return strings.Join(words, " ") + " " + s.table.FallbackSuffix
	}
	return s.table.Generic
}

// Premium appends one random quality adjective to the plain query.
func (s *Synthesizer) Premium(prompt string) string {
	return s.PremiumInSeason(prompt, "")
}

// PremiumInSeason is Premium with a fallback season.
func (s *Synthesizer) PremiumInSeason(prompt, fallbackSeason string) string {
	base := s.SynthesizeInSeason(prompt, fallbackSeason)
	if len(s.table.Adjectives) == 0 {
		return base
	}
	s.mu.Lock()
	adj := s.table.Adjectives[s.rng.IntN(len(s.table.Adjectives))]
	s.mu.Unlock()
	return base + " " + adj
}

// Topic returns a coarse bucket (beach, mountain, city, europe) or "travel".
func (s *Synthesizer) Topic(prompt string) string {
	text := normalize(prompt)
	for _, topic := range s.table.TopicOrder {
		for _, kw := range s.table.Topics[topic] {
			if contains(text, kw) {
				return topic
			}
		}
	}
	return "travel"
}

// SeasonForMonth maps a 1-12 month to its northern-hemisphere season.
func SeasonForMonth(month int) string {
	switch month {
	case 12, 1, 2:
		return "winter"
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	case 9, 10, 11:
		return "autumn"
	}
	return ""
}

var (
	seasonOrder = []string{"winter", "summer", "spring", "autumn"}
	socialOrder = []string{"family", "friends", "romantic", "solo"}
)

func (s *Synthesizer) compose(e Entry, season, social string) string {
	phrase := e.Phrase
	if v, ok := e.Seasons[season]; ok && season != "" {
		phrase = v
	} else if season != "" {
		phrase = season + " " + phrase
	}

	suffix := s.table.DefaultSocial
	if v, ok := s.table.SocialPhrases[social]; ok {
		suffix = v
	}
	if suffix == "" {
		return phrase
	}
	return phrase + " " + suffix
}

func (s *Synthesizer) detect(text string, groups map[string][]string, order []string) string {
	for _, name := range order {
		for _, kw := range groups[name] {
			if contains(text, kw) {
				return name
			}
		}
	}
	return ""
}

func (s *Synthesizer) meaningful(text string, limit int) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		if len(w) <= 2 {
			continue
		}
		if _, skip := s.stopwords[w]; skip {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

func match(text string, entries []Entry) (Entry, bool) {
	for _, e := range entries {
		for _, kw := range e.Keywords {
			if contains(text, kw) {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// contains reports whether kw occurs in normalized text on word boundaries.
func contains(text, kw string) bool {
	kw = normalize(kw)
	if kw == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+kw+" ")
}

// normalize lowercases s, replaces punctuation with spaces and collapses whitespace.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Normalize exposes the prompt normalization used by the matchers.
func Normalize(s string) string {
	return normalize(s)
}

// HasWord reports whether kw occurs on word boundaries in text already passed through Normalize.
func HasWord(normalized, kw string) bool {
	return contains(normalized, kw)
}

// HasAny reports whether any of kws occurs in normalized text.
func HasAny(normalized string, kws []string) bool {
	for _, kw := range kws {
		if contains(normalized, kw) {
			return true
		}
	}
	return false
}
