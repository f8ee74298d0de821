package mocks

import (
	"context"
	"errors"

	"github.com/godilite/review-server/internal/service"
)

// MockReviewSessions is a mock implementation of the ReviewSessions interface.
type MockReviewSessions struct {
	OpenFunc    func(ctx context.Context) (string, *service.RatingAggregator, error)
	GetFunc     func(id string) (*service.RatingAggregator, error)
	CloseFunc   func(id string) error
	SummaryFunc func(ctx context.Context) (service.AggregateState, error)
}

// Open implements the ReviewSessions interface
func (m *MockReviewSessions) Open(ctx context.Context) (string, *service.RatingAggregator, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx)
	}
	return "", nil, errors.New("OpenFunc not implemented")
}

// Get implements the ReviewSessions interface
func (m *MockReviewSessions) Get(id string) (*service.RatingAggregator, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, service.ErrSessionNotFound
}

// Close implements the ReviewSessions interface
func (m *MockReviewSessions) Close(id string) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(id)
	}
	return nil
}

// Summary implements the ReviewSessions interface
func (m *MockReviewSessions) Summary(ctx context.Context) (service.AggregateState, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return service.AggregateState{}, errors.New("SummaryFunc not implemented")
}
