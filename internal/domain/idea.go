package domain

import "time"

// IdeaStatus enumerates the publication states of a travel idea.
type IdeaStatus string

const (
	StatusDraft     IdeaStatus = "DRAFT"
	StatusPublished IdeaStatus = "PUBLISHED"
)

// ImageSource tells whether an image was generated or picked from a stock library.
type ImageSource string

const (
	SourceGenerated ImageSource = "GENERATED"
	SourceStock     ImageSource = "STOCK"
)

// PaletteSize is the number of colors every moodboard palette carries.
const PaletteSize = 5

// MaxTags caps the tag set attached to an idea.
const MaxTags = 5

// Idea is a free-text trip proposal owned by the surrounding application.
// The enrichment pipeline only fills the moodboard fields and flips Status.
type Idea struct {
	ID         string
	GroupID    string
	Prompt     string
	MonthHint  *int
	BudgetTier string
	Status     IdeaStatus
	Palette    []string
	Summary    *string
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Image is a moodboard picture attached to an idea. Rows are immutable once created.
type Image struct {
	ID        string
	IdeaID    string
	URL       string
	Source    ImageSource
	Provider  string
	Order     int
	CreatedAt time.Time
}

// IdeaUpdate carries the fields the pipeline may write back. Nil fields are left untouched.
type IdeaUpdate struct {
	Status  *IdeaStatus
	Palette []string
	Summary *string
	Tags    []string
}

// ImageResult is what an image provider hands back to the pipeline.
type ImageResult struct {
	URLs     []string
	Provider string
	Source   ImageSource
}

// AvailabilitySample is one member's self-reported availability for a month.
type AvailabilitySample struct {
	GroupID string
	UserID  string
	Month   int
	Score   int
}

// CandidateURLs lists the resolutions a stock provider offers for one photo.
type CandidateURLs struct {
	Raw     string
	Full    string
	Regular string
	Small   string
}

// Photographer describes the author of a stock photo.
type Photographer struct {
	Name        string
	TotalPhotos int
	TotalLikes  int
}

// CandidateImage is a transient stock search hit considered by the quality ranker.
type CandidateImage struct {
	ID             string
	URLs           CandidateURLs
	Description    string
	AltDescription string
	Likes          int
	Downloads      int
	Views          int
	Width          int
	Height         int
	Color          string
	CreatedAt      time.Time
	Sponsored      bool
	Premium        bool
	Photographer   Photographer
}

// StatusPtr is a helper for building IdeaUpdate values.
func StatusPtr(s IdeaStatus) *IdeaStatus {
	return &s
}
