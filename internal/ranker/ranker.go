// Package ranker scores stock photo candidates and picks the ones worth showing on a moodboard.
package ranker

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/query"
)

// Weights holds the additive bonuses of the scoring model.
type Weights struct {
	HumanPresence float64 `yaml:"humanPresence"`
	Emotional     float64 `yaml:"emotional"`
	Activity      float64 `yaml:"activity"`
	Lifestyle     float64 `yaml:"lifestyle"`
	Brightness    float64 `yaml:"brightness"`
	Landscape     float64 `yaml:"landscape"`
}

// Config tunes selection. Thresholds were picked empirically and are meant to be tuned.
type Config struct {
	PrimaryThreshold float64 `yaml:"primaryThreshold"`
	RelaxedThreshold float64 `yaml:"relaxedThreshold"`
	TopN             int     `yaml:"topN"`
	Weights          Weights `yaml:"weights"`
}

// DefaultConfig returns the production thresholds and weights.
func DefaultConfig() Config {
	return Config{
		PrimaryThreshold: 15,
		RelaxedThreshold: 10,
		TopN:             4,
		Weights: Weights{
			HumanPresence: 20,
			Emotional:     15,
			Activity:      12,
			Lifestyle:     10,
			Brightness:    5,
			Landscape:     3,
		},
	}
}

var (
	humanWords     = []string{"people", "person", "family", "friends", "couple", "group", "travelers", "tourists", "woman", "man", "kids"}
	emotionalWords = []string{"enjoying", "laughing", "happy", "smiling", "joy", "fun", "celebrating"}
	activityWords  = []string{"skiing", "hiking", "dining", "exploring", "swimming", "surfing", "cycling", "walking", "sailing", "camping"}
	lifestyleWords = []string{"cozy", "romantic", "warm", "intimate", "relaxing", "candlelit"}
)

// Scored pairs a candidate with its score and original position.
type Scored struct {
	Candidate domain.CandidateImage
	Score     float64
	Index     int
}

// Selection is the outcome of Rank.
type Selection struct {
	Images []Scored
	// PrimaryCount is how many candidates cleared the primary threshold.
	PrimaryCount int
	Relaxed      bool
}

// URLs returns the best URL of every selected candidate, in rank order.
func (s Selection) URLs() []string {
	out := make([]string, 0, len(s.Images))
	for _, img := range s.Images {
		if u := BestURL(img.Candidate); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Ranker scores candidates with Config.
type Ranker struct {
	cfg Config
	now func() time.Time
}

// New builds a ranker; zero-valued config fields fall back to DefaultConfig.
func New(cfg Config) *Ranker {
	def := DefaultConfig()
	if cfg.PrimaryThreshold == 0 {
		cfg.PrimaryThreshold = def.PrimaryThreshold
	}
	if cfg.RelaxedThreshold == 0 {
		cfg.RelaxedThreshold = def.RelaxedThreshold
	}
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	w := &cfg.Weights
	orDefault(&w.HumanPresence, def.Weights.HumanPresence)
	orDefault(&w.Emotional, def.Weights.Emotional)
	orDefault(&w.Activity, def.Weights.Activity)
	orDefault(&w.Lifestyle, def.Weights.Lifestyle)
	orDefault(&w.Brightness, def.Weights.Brightness)
	orDefault(&w.Landscape, def.Weights.Landscape)
	return &Ranker{cfg: cfg, now: time.Now}
}

func orDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// TopN reports how many images a full selection holds.
func (r *Ranker) TopN() int {
	return r.cfg.TopN
}

// Score computes the additive quality score of one candidate.
func (r *Ranker) Score(c domain.CandidateImage) float64 {
	w := r.cfg.Weights
	text := query.Normalize(c.Description + " " + c.AltDescription)

	var score float64
	if query.HasAny(text, humanWords) {
		score += w.HumanPresence
	}
	if query.HasAny(text, emotionalWords) {
		score += w.Emotional
	}
	if query.HasAny(text, activityWords) {
		score += w.Activity
	}
	if query.HasAny(text, lifestyleWords) {
		score += w.Lifestyle
	}

	score += math.Min(float64(c.Likes)/200, 5)
	score += math.Min(float64(c.Downloads)/100, 5)
	score += math.Min(float64(c.Views)/2000, 3)

	if c.Width > 0 && c.Height > 0 {
		ratio := float64(c.Width) / float64(c.Height)
		if ratio >= 1.2 && ratio <= 2.5 {
			score += w.Landscape
		}
		pixels := c.Width * c.Height
		if pixels >= 2_000_000 {
			score += 3
		}
		if pixels >= 5_000_000 {
			score += 2
		}
		if pixels >= 10_000_000 {
			score += 2
		}
	}

	if lum, ok := luminance(c.Color); ok && lum >= 50 && lum <= 205 {
		score += w.Brightness
	}

	if c.Sponsored {
		score++
	}
	if c.Premium {
		score += 2
	}

	if !c.CreatedAt.IsZero() {
		age := r.now().Sub(c.CreatedAt)
		switch {
		case age < 7*24*time.Hour:
			score += 2
		case age < 30*24*time.Hour:
			score++
		}
	}

	if c.Photographer.TotalPhotos >= 100 {
		score++
	}
	if c.Photographer.TotalLikes >= 1000 {
		score++
	}

	return score
}

// Rank scores every candidate and selects the top N that clear the primary threshold.
// When fewer than N clear it, the whole set is re-selected with the relaxed threshold.
// Ties keep provider order.
func (r *Ranker) Rank(candidates []domain.CandidateImage) Selection {
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Candidate: c, Score: r.Score(c), Index: i}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	primary := pick(scored, r.cfg.PrimaryThreshold, r.cfg.TopN)
	sel := Selection{Images: primary, PrimaryCount: countAtLeast(scored, r.cfg.PrimaryThreshold)}
	if len(primary) >= r.cfg.TopN {
		return sel
	}

	sel.Images = pick(scored, r.cfg.RelaxedThreshold, r.cfg.TopN)
	sel.Relaxed = true
	return sel
}

func pick(sorted []Scored, threshold float64, n int) []Scored {
	out := make([]Scored, 0, n)
	for _, s := range sorted {
		if s.Score < threshold {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

func countAtLeast(sorted []Scored, threshold float64) int {
	n := 0
	for _, s := range sorted {
		if s.Score >= threshold {
			n++
		}
	}
	return n
}

// BestURL prefers full, then raw, regular and small.
func BestURL(c domain.CandidateImage) string {
	for _, u := range []string{c.URLs.Full, c.URLs.Raw, c.URLs.Regular, c.URLs.Small} {
		if u != "" {
			return u
		}
	}
	return ""
}

// luminance parses "#rrggbb" and returns perceived brightness on a 0-255 scale.
func luminance(hex string) (float64, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	r := float64((v >> 16) & 0xff)
	g := float64((v >> 8) & 0xff)
	b := float64(v & 0xff)
	return 0.299*r + 0.587*g + 0.114*b, true
}
