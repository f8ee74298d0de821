package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godilite/review-server/internal/repository/models"
	"go.uber.org/zap"
)

const (
	defaultStoreTimeout = 10 * time.Second
	// Matches the en-US short date a browser shows for the same instant.
	reviewDateLayout = "1/2/2006"
)

type AggregatorOption func(*RatingAggregator)

func WithRenderer(r Renderer) AggregatorOption {
	return func(a *RatingAggregator) { a.renderer = r }
}

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *RatingAggregator) { a.now = now }
}

func WithStoreTimeout(d time.Duration) AggregatorOption {
	return func(a *RatingAggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// RatingAggregator holds the reviews of one product together with the
// in-progress form of one user session. Every mutation ends with a call to
// the renderer carrying a fresh snapshot.
type RatingAggregator struct {
	store   ReviewStore
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration

	mu        sync.Mutex
	renderer  Renderer
	input     InputSelection
	aggregate AggregateState
	notice    string
	lastErr   error

	// loadSeq numbers reads in start order; only the latest may land.
	loadSeq uint64
}

// NewRatingAggregator creates an aggregator with an empty review list. Call
// LoadReviews to populate it.
func NewRatingAggregator(store ReviewStore, logger *zap.Logger, opts ...AggregatorOption) *RatingAggregator {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	a := &RatingAggregator{
		store:     store,
		logger:    logger.Named("rating-aggregator"),
		now:       time.Now,
		timeout:   defaultStoreTimeout,
		aggregate: NewAggregateState(nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetRenderer swaps the display boundary. Useful when the renderer can only
// be built after the aggregator.
func (a *RatingAggregator) SetRenderer(r Renderer) {
	a.mu.Lock()
	a.renderer = r
	a.mu.Unlock()
}

// SetRating commits a star choice.
func (a *RatingAggregator) SetRating(n int) error {
	if n < MinRating || n > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, n)
	}
	a.mu.Lock()
	a.input.CurrentRating = n
	a.mu.Unlock()

	a.Refresh()
	return nil
}

// PreviewRating shows a hover state without touching the committed rating.
func (a *RatingAggregator) PreviewRating(n int) error {
	if n < MinRating || n > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, n)
	}
	a.mu.Lock()
	a.input.PreviewRating = n
	a.mu.Unlock()

	a.Refresh()
	return nil
}

// ClearPreview is the pointer leaving the star input.
func (a *RatingAggregator) ClearPreview() {
	a.mu.Lock()
	a.input.PreviewRating = 0
	a.mu.Unlock()

	a.Refresh()
}

func (a *RatingAggregator) SetName(name string) {
	a.mu.Lock()
	a.input.Name = name
	a.mu.Unlock()

	a.Refresh()
}

func (a *RatingAggregator) SetText(text string) {
	a.mu.Lock()
	a.input.Text = text
	a.mu.Unlock()

	a.Refresh()
}

// ClearForm resets name, text and rating. It leaves an in-flight submission
// alone.
func (a *RatingAggregator) ClearForm() {
	a.mu.Lock()
	a.input.CurrentRating = 0
	a.input.PreviewRating = 0
	a.input.Name = ""
	a.input.Text = ""
	a.notice = ""
	a.lastErr = nil
	a.mu.Unlock()

	a.Refresh()
}

// IsSubmittable reports whether SubmitReview would send the form now.
func (a *RatingAggregator) IsSubmittable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submittableLocked()
}

func (a *RatingAggregator) submittableLocked() bool {
	return !a.input.Submitting && a.input.Submittable()
}

// Submit fills the form fields and submits them in one step.
func (a *RatingAggregator) Submit(ctx context.Context, name, text string) error {
	a.mu.Lock()
	if a.input.Submitting {
		a.mu.Unlock()
		return ErrSubmitInFlight
	}
	a.input.Name = name
	a.input.Text = text
	a.mu.Unlock()

	return a.SubmitReview(ctx)
}

// SubmitReview persists the current form as a new review. Only one
// submission runs at a time; a call made while another is outstanding
// returns ErrSubmitInFlight without touching the store. On success the form
// is cleared and the reviews are reloaded before the next render. On failure
// the form is kept as it was.
func (a *RatingAggregator) SubmitReview(ctx context.Context) error {
	a.mu.Lock()
	if a.input.Submitting {
		a.mu.Unlock()
		return ErrSubmitInFlight
	}
	if !a.input.Submittable() {
		a.mu.Unlock()
		return ErrNotSubmittable
	}

	now := a.now()
	doc := models.ReviewDocument{
		Name:      strings.TrimSpace(a.input.Name),
		Rating:    a.input.CurrentRating,
		Text:      strings.TrimSpace(a.input.Text),
		Date:      now.Local().Format(reviewDateLayout),
		Timestamp: now.UnixMilli(),
	}
	a.input.Submitting = true
	a.notice = ""
	a.lastErr = nil
	a.mu.Unlock()

	a.Refresh()

	storeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	id, err := a.store.Create(storeCtx, doc)
	cancel()

	if err != nil {
		err = classifyStoreError(err)
		a.logger.Error("error submitting review", zap.Error(err))

		a.mu.Lock()
		a.input.Submitting = false
		a.lastErr = err
		a.notice = failureNotice(err)
		a.mu.Unlock()

		a.Refresh()
		return err
	}

	a.logger.Info("review submitted",
		zap.String("id", id),
		zap.Int("rating", doc.Rating))

	a.mu.Lock()
	a.input = InputSelection{}
	a.notice = NoticeSubmitted
	a.mu.Unlock()

	a.LoadReviews(ctx)
	return nil
}

// LoadReviews replaces the aggregate with a fresh read of the store. A read
// failure leaves an empty aggregate behind rather than stale data; it is
// logged and never returned. A load that finishes after a later one started
// is discarded.
func (a *RatingAggregator) LoadReviews(ctx context.Context) {
	a.mu.Lock()
	a.loadSeq++
	seq := a.loadSeq
	a.mu.Unlock()

	storeCtx, cancel := context.WithTimeout(ctx, a.timeout)
	state, err := LoadAggregate(storeCtx, a.store, a.logger)
	cancel()

	if err != nil {
		a.logger.Error("error loading reviews", zap.Error(err))
		state = NewAggregateState(nil)
	}

	a.mu.Lock()
	if seq != a.loadSeq {
		a.mu.Unlock()
		a.logger.Debug("dropping superseded review load", zap.Uint64("seq", seq))
		return
	}
	a.aggregate = state
	a.mu.Unlock()

	a.Refresh()
}

// AverageRating is the unrounded mean of the loaded reviews.
func (a *RatingAggregator) AverageRating() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aggregate.AverageRating
}

// Snapshot returns a copy of the current state safe to hand to other
// goroutines.
func (a *RatingAggregator) Snapshot() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *RatingAggregator) snapshotLocked() View {
	agg := a.aggregate
	agg.Reviews = append([]Review(nil), a.aggregate.Reviews...)
	agg.Stars = append([]StarCount(nil), a.aggregate.Stars...)

	return View{
		Aggregate:   agg,
		Input:       a.input,
		Submittable: a.submittableLocked(),
		Notice:      a.notice,
		LastError:   a.lastErr,
	}
}

// Refresh pushes the current snapshot to the renderer, if any.
func (a *RatingAggregator) Refresh() {
	a.mu.Lock()
	r := a.renderer
	view := a.snapshotLocked()
	a.mu.Unlock()

	if r != nil {
		r.Render(view)
	}
}

// LoadAggregate reads the whole collection and derives its statistics.
// Unlike RatingAggregator.LoadReviews it reports read failures.
func LoadAggregate(ctx context.Context, store ReviewStore, logger *zap.Logger) (AggregateState, error) {
	docs, err := store.List(ctx)
	if err != nil {
		return AggregateState{}, classifyStoreError(err)
	}
	return NewAggregateState(ReviewsFromDocuments(docs, logger)), nil
}
