package service

import (
	"errors"
	"fmt"

	"github.com/godilite/review-server/internal/repository/models"
)

var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNotSubmittable   = errors.New("review needs a rating, a name and a text")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrStoreUnavailable = errors.New("review store unavailable")
	ErrStoreRejected    = errors.New("review store rejected the review")
	ErrSessionNotFound  = errors.New("session not found")
)

const (
	NoticeSubmitted   = "Review submitted successfully!"
	NoticeSubmitRetry = "Failed to submit review. Please try again."
	NoticeRejected    = "Your review was rejected by the review store."
)

// classifyStoreError folds a store failure into one of the two store
// sentinels so callers never depend on a store implementation.
func classifyStoreError(err error) error {
	if errors.Is(err, models.ErrRejected) {
		return fmt.Errorf("%w: %v", ErrStoreRejected, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func failureNotice(err error) string {
	if errors.Is(err, ErrStoreRejected) {
		return NoticeRejected
	}
	return NoticeSubmitRetry
}
