package service

import "strings"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a persisted review as shown to readers.
type Review struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
}

// StarCount is one row of the rating distribution.
type StarCount struct {
	Star    int     `json:"star"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// AggregateState is derived from a full read of the store and replaced as a
// whole on every load.
type AggregateState struct {
	Reviews       []Review    `json:"reviews"`
	AverageRating float64     `json:"average_rating"`
	Stars         []StarCount `json:"stars"`
	Total         int         `json:"total"`
}

// CountsByStar returns star value to occurrence count for 1..5.
func (a AggregateState) CountsByStar() map[int]int {
	counts := make(map[int]int, MaxRating)
	for star := MinRating; star <= MaxRating; star++ {
		counts[star] = 0
	}
	for _, s := range a.Stars {
		counts[s.Star] = s.Count
	}
	return counts
}

// InputSelection is the in-progress form of one session.
type InputSelection struct {
	CurrentRating int    `json:"current_rating"`
	PreviewRating int    `json:"preview_rating"`
	Name          string `json:"name"`
	Text          string `json:"text"`
	Submitting    bool   `json:"submitting"`
}

// DisplayRating is the rating the star input should highlight: the hover
// preview while one is active, the committed rating otherwise.
func (s InputSelection) DisplayRating() int {
	if s.PreviewRating > 0 {
		return s.PreviewRating
	}
	return s.CurrentRating
}

// Submittable reports whether the form may be sent.
func (s InputSelection) Submittable() bool {
	return s.CurrentRating > 0 && !isBlank(s.Name) && !isBlank(s.Text)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// View is what the rendering boundary receives.
type View struct {
	Aggregate   AggregateState
	Input       InputSelection
	Submittable bool
	Notice      string
	LastError   error
}

var ratingLabels = [...]string{"", "Poor", "Fair", "Good", "Very Good", "Excellent"}

// RatingLabel names a star value; 0 reads as a prompt.
func RatingLabel(rating int) string {
	if rating < MinRating || rating > MaxRating {
		return "Select a rating"
	}
	return ratingLabels[rating]
}
