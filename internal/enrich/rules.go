package enrich

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Rule adds Tags when any of Keywords appears in the prompt.
type Rule struct {
	Group    string   `yaml:"group"`
	Keywords []string `yaml:"keywords"`
	Tags     []string `yaml:"tags"`
}

// FallbackTags pad tag sets that matched fewer than three rules.
var FallbackTags = []string{"nature", "adventure", "exploration"}

// LoadRules decodes an ordered YAML list of rules.
func LoadRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode tag rules: %w", err)
	}
	return rules, nil
}

// DefaultRules is the built-in ordered rule set: season, destination, terrain, activity, setting.
func DefaultRules() []Rule {
	return []Rule{
		{Group: "season", Keywords: []string{"winter", "snow", "christmas", "december", "january", "february"}, Tags: []string{"winter"}},
		{Group: "season", Keywords: []string{"summer", "june", "july", "august"}, Tags: []string{"summer"}},
		{Group: "season", Keywords: []string{"spring", "april", "blossom", "blossoms"}, Tags: []string{"spring"}},
		{Group: "season", Keywords: []string{"autumn", "fall", "october", "foliage"}, Tags: []string{"autumn"}},

		{Group: "destination", Keywords: []string{"paris", "rome", "italy", "spain", "lisbon", "greece", "europe", "london", "barcelona"}, Tags: []string{"europe"}},
		{Group: "destination", Keywords: []string{"japan", "tokyo", "kyoto", "bali", "thailand", "asia"}, Tags: []string{"asia"}},
		{Group: "destination", Keywords: []string{"mexico", "canada", "new york", "hawaii", "usa"}, Tags: []string{"americas"}},
		{Group: "destination", Keywords: []string{"iceland", "norway", "fjord", "fjords", "lapland"}, Tags: []string{"nordic"}},

		{Group: "terrain", Keywords: []string{"beach", "beaches", "coast", "island", "islands", "ocean", "sea"}, Tags: []string{"beach", "coastal"}},
		{Group: "terrain", Keywords: []string{"mountain", "mountains", "alps", "peak", "peaks"}, Tags: []string{"mountains"}},
		{Group: "terrain", Keywords: []string{"forest", "jungle", "woods"}, Tags: []string{"forest"}},
		{Group: "terrain", Keywords: []string{"desert", "dunes", "sahara"}, Tags: []string{"desert"}},

		{Group: "activity", Keywords: []string{"ski", "skiing", "snowboard", "snowboarding"}, Tags: []string{"skiing"}},
		{Group: "activity", Keywords: []string{"hike", "hiking", "trek", "trekking"}, Tags: []string{"hiking"}},
		{Group: "activity", Keywords: []string{"food", "culinary", "wine", "tasting", "restaurants"}, Tags: []string{"food"}},
		{Group: "activity", Keywords: []string{"surf", "surfing", "diving", "snorkeling", "sailing"}, Tags: []string{"water-sports"}},
		{Group: "activity", Keywords: []string{"museum", "museums", "history", "architecture"}, Tags: []string{"culture"}},
		{Group: "activity", Keywords: []string{"party", "nightlife", "festival", "clubbing"}, Tags: []string{"nightlife"}},

		{Group: "setting", Keywords: []string{"city", "cities", "urban", "downtown"}, Tags: []string{"city"}},
		{Group: "setting", Keywords: []string{"cabin", "chalet", "lodge", "cottage"}, Tags: []string{"cozy"}},
		{Group: "setting", Keywords: []string{"camping", "camp", "tent"}, Tags: []string{"outdoors"}},
		{Group: "setting", Keywords: []string{"spa", "wellness", "retreat", "yoga"}, Tags: []string{"relaxation"}},
		{Group: "setting", Keywords: []string{"luxury", "resort", "villa"}, Tags: []string{"luxury"}},
	}
}
