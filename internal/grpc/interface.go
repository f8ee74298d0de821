package grpc

import (
	"context"
	"time"

	"github.com/godilite/review-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ReviewSessions is the session layer the handlers drive.
type ReviewSessions interface {
	Open(ctx context.Context) (string, *service.RatingAggregator, error)
	Get(id string) (*service.RatingAggregator, error)
	Close(id string) error
	Summary(ctx context.Context) (service.AggregateState, error)
}
