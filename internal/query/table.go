package query

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Entry maps prompt keywords to a search phrase, with optional per-season variants.
type Entry struct {
	Keywords []string          `yaml:"keywords"`
	Phrase   string            `yaml:"phrase"`
	Seasons  map[string]string `yaml:"seasons"`
}

// Table is the swappable keyword data consulted by the synthesizer.
// Entries are matched in slice order; the first match wins.
type Table struct {
	Locations  []Entry             `yaml:"locations"`
	Activities []Entry             `yaml:"activities"`
	Seasons    map[string][]string `yaml:"seasons"`
	Social     map[string][]string `yaml:"social"`
	// SocialPhrases is appended to location/activity phrases when a social context is detected.
	SocialPhrases  map[string]string   `yaml:"socialPhrases"`
	DefaultSocial  string              `yaml:"defaultSocial"`
	Topics         map[string][]string `yaml:"topics"`
	TopicOrder     []string            `yaml:"topicOrder"`
	Stopwords      []string            `yaml:"stopwords"`
	Adjectives     []string            `yaml:"adjectives"`
	FallbackSuffix string              `yaml:"fallbackSuffix"`
	Generic        string              `yaml:"generic"`
}

// LoadTable decodes a YAML table and fills any section it omits from DefaultTable.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return Table{}, fmt.Errorf("decode query table: %w", err)
	}
	return mergeTable(DefaultTable(), t), nil
}

func mergeTable(base, override Table) Table {
	if len(override.Locations) > 0 {
		base.Locations = override.Locations
	}
	if len(override.Activities) > 0 {
		base.Activities = override.Activities
	}
	if len(override.Seasons) > 0 {
		base.Seasons = override.Seasons
	}
	if len(override.Social) > 0 {
		base.Social = override.Social
	}
	if len(override.SocialPhrases) > 0 {
		base.SocialPhrases = override.SocialPhrases
	}
	if override.DefaultSocial != "" {
		base.DefaultSocial = override.DefaultSocial
	}
	if len(override.Topics) > 0 {
		base.Topics = override.Topics
		base.TopicOrder = override.TopicOrder
	}
	if len(override.Stopwords) > 0 {
		base.Stopwords = override.Stopwords
	}
	if len(override.Adjectives) > 0 {
		base.Adjectives = override.Adjectives
	}
	if override.FallbackSuffix != "" {
		base.FallbackSuffix = override.FallbackSuffix
	}
	if override.Generic != "" {
		base.Generic = override.Generic
	}
	return base
}

// DefaultTable returns the built-in keyword data.
func DefaultTable() Table {
	return Table{
		Locations: []Entry{
			{Keywords: []string{"paris"}, Phrase: "paris street cafe eiffel tower", Seasons: map[string]string{
				"winter": "paris christmas lights cafe",
				"spring": "paris cherry blossoms seine walk",
			}},
			{Keywords: []string{"rome", "italy", "tuscany"}, Phrase: "italy piazza trattoria dinner", Seasons: map[string]string{
				"summer": "italy coast aperitivo sunset",
				"autumn": "tuscany vineyard harvest",
			}},
			{Keywords: []string{"barcelona", "spain", "madrid"}, Phrase: "spain tapas bar old town"},
			{Keywords: []string{"lisbon", "portugal", "porto"}, Phrase: "lisbon tram terrace view"},
			{Keywords: []string{"greece", "santorini", "athens"}, Phrase: "greek island whitewashed village sea", Seasons: map[string]string{
				"summer": "greek island beach swimming",
			}},
			{Keywords: []string{"alps", "switzerland", "zermatt", "chamonix"}, Phrase: "alps mountain village", Seasons: map[string]string{
				"winter": "alps ski resort snow chalet",
				"summer": "alps hiking meadow lake",
			}},
			{Keywords: []string{"iceland"}, Phrase: "iceland waterfall road trip", Seasons: map[string]string{
				"winter": "iceland northern lights snow",
			}},
			{Keywords: []string{"norway", "fjord", "fjords"}, Phrase: "norway fjord cabin", Seasons: map[string]string{
				"winter": "norway northern lights cabin",
			}},
			{Keywords: []string{"japan", "tokyo", "kyoto"}, Phrase: "japan temple street food", Seasons: map[string]string{
				"spring": "japan cherry blossom picnic",
				"autumn": "kyoto autumn leaves temple",
				"winter": "japan onsen snow",
			}},
			{Keywords: []string{"bali", "indonesia"}, Phrase: "bali rice terraces villa pool"},
			{Keywords: []string{"thailand", "bangkok", "phuket"}, Phrase: "thailand beach longtail boat"},
			{Keywords: []string{"new york", "nyc", "manhattan"}, Phrase: "new york city skyline rooftop", Seasons: map[string]string{
				"winter": "new york christmas ice skating",
			}},
			{Keywords: []string{"london"}, Phrase: "london pub street evening"},
			{Keywords: []string{"mexico", "tulum", "cancun"}, Phrase: "mexico cenote beach"},
			{Keywords: []string{"hawaii", "maui"}, Phrase: "hawaii beach surfing sunset"},
			{Keywords: []string{"canada", "banff", "whistler"}, Phrase: "canadian rockies lake cabin", Seasons: map[string]string{
				"winter": "canada ski lodge snow",
			}},
			{Keywords: []string{"morocco", "marrakech"}, Phrase: "marrakech market riad"},
		},
		Activities: []Entry{
			{Keywords: []string{"ski", "skiing", "snowboard", "snowboarding"}, Phrase: "skiing mountain slopes snow"},
			{Keywords: []string{"hike", "hiking", "trek", "trekking"}, Phrase: "hiking mountain trail", Seasons: map[string]string{
				"winter": "snowshoe hiking winter trail",
				"autumn": "hiking autumn forest trail",
			}},
			{Keywords: []string{"beach", "beaches"}, Phrase: "tropical beach relaxing", Seasons: map[string]string{
				"winter": "winter sun beach escape",
			}},
			{Keywords: []string{"surf", "surfing"}, Phrase: "surfing ocean waves"},
			{Keywords: []string{"camping", "camp"}, Phrase: "camping campfire tent night", Seasons: map[string]string{
				"summer": "summer lake camping",
			}},
			{Keywords: []string{"road trip", "roadtrip", "drive"}, Phrase: "scenic road trip van"},
			{Keywords: []string{"food", "culinary", "wine", "tasting"}, Phrase: "food market wine tasting dinner"},
			{Keywords: []string{"city", "cities", "urban"}, Phrase: "city break old town streets", Seasons: map[string]string{
				"winter": "city christmas market",
			}},
			{Keywords: []string{"island", "islands", "sailing", "boat"}, Phrase: "island sailing turquoise water"},
			{Keywords: []string{"festival", "concert"}, Phrase: "music festival crowd"},
		},
		Seasons: map[string][]string{
			"winter": {"winter", "snow", "christmas", "december", "january", "february", "ski", "skiing"},
			"summer": {"summer", "june", "july", "august", "sunny", "heat"},
			"spring": {"spring", "march", "april", "blossom", "blossoms", "easter"},
			"autumn": {"autumn", "fall", "september", "october", "november", "foliage", "harvest"},
		},
		Social: map[string][]string{
			"family":   {"family", "kids", "children", "parents"},
			"friends":  {"friends", "group", "crew", "gang", "squad"},
			"romantic": {"romantic", "honeymoon", "couple", "anniversary", "partner"},
			"solo":     {"solo", "alone", "myself"},
		},
		SocialPhrases: map[string]string{
			"family":   "family enjoying together",
			"friends":  "friends having fun together",
			"romantic": "couple romantic moment",
			"solo":     "solo traveler exploring",
		},
		DefaultSocial: "people enjoying",
		Topics: map[string][]string{
			"beach":    {"beach", "island", "coast", "ocean", "sea", "tropical", "surf"},
			"mountain": {"mountain", "mountains", "alps", "hike", "hiking", "ski", "skiing", "trek"},
			"city":     {"city", "urban", "new york", "london", "tokyo", "downtown"},
			"europe":   {"europe", "paris", "rome", "italy", "spain", "barcelona", "lisbon", "greece", "france"},
		},
		TopicOrder: []string{"beach", "mountain", "city", "europe"},
		Stopwords: []string{
			"the", "and", "for", "with", "our", "are", "was", "that", "this", "from",
			"into", "trip", "want", "would", "like", "some", "let", "lets", "go", "to", "we",
		},
		Adjectives: []string{
			"stunning", "award winning", "breathtaking", "professional", "cinematic", "vibrant",
		},
		FallbackSuffix: "travel experience",
		Generic:        "people enjoying travel adventure",
	}
}
