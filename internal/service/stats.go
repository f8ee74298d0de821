package service

import (
	"sort"

	"github.com/godilite/review-server/internal/repository/models"
	"go.uber.org/zap"
)

// ComputeAverage is the unrounded mean rating, 0 for no reviews.
func ComputeAverage(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// ComputeStarCounts returns the distribution from 5 stars down to 1. The
// percentage divides by max(1, total) so an empty list yields zeros.
func ComputeStarCounts(reviews []Review) []StarCount {
	var counts [MaxRating + 1]int
	for _, r := range reviews {
		if r.Rating >= MinRating && r.Rating <= MaxRating {
			counts[r.Rating]++
		}
	}

	total := len(reviews)
	if total == 0 {
		total = 1
	}

	out := make([]StarCount, 0, MaxRating)
	for star := MaxRating; star >= MinRating; star-- {
		out = append(out, StarCount{
			Star:    star,
			Count:   counts[star],
			Percent: float64(counts[star]) / float64(total) * 100,
		})
	}
	return out
}

// NewAggregateState derives every statistic from reviews, which must already
// be in display order.
func NewAggregateState(reviews []Review) AggregateState {
	if reviews == nil {
		reviews = []Review{}
	}
	return AggregateState{
		Reviews:       reviews,
		AverageRating: ComputeAverage(reviews),
		Stars:         ComputeStarCounts(reviews),
		Total:         len(reviews),
	}
}

// ReviewsFromDocuments flattens the store's keyed collection into reviews,
// newest first. Ties on timestamp fall back to id so the order is stable.
// Records that break the review invariants are dropped.
func ReviewsFromDocuments(docs map[string]models.ReviewDocument, logger *zap.Logger) []Review {
	reviews := make([]Review, 0, len(docs))
	for id, d := range docs {
		if d.Rating < MinRating || d.Rating > MaxRating || isBlank(d.Name) || isBlank(d.Text) {
			if logger != nil {
				logger.Warn("dropping invalid review document",
					zap.String("id", id),
					zap.Int("rating", d.Rating))
			}
			continue
		}
		reviews = append(reviews, Review{
			ID:        id,
			Name:      d.Name,
			Rating:    d.Rating,
			Text:      d.Text,
			Date:      d.Date,
			Timestamp: d.Timestamp,
		})
	}

	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].Timestamp != reviews[j].Timestamp {
			return reviews[i].Timestamp > reviews[j].Timestamp
		}
		return reviews[i].ID < reviews[j].ID
	})
	return reviews
}
