package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 30*time.Second {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	return ttl + jitter
}

// readThrough caches one value under a fixed key with singleflight on misses
// and a refresh-ahead on hits. Invalidate bumps a generation so fetches that
// started before it never write their result back.
type readThrough[T any] struct {
	cache  Cacher
	sf     singleflight.Group
	key    string
	ttl    time.Duration
	logger *zap.Logger
	fetch  FetchFunc[T]
	gen    atomic.Uint64
	// refreshDelay spreads background refreshes of concurrent hits.
	refreshDelay func() time.Duration
}

func newReadThrough[T any](c Cacher, key string, ttl time.Duration, logger *zap.Logger, fetch FetchFunc[T]) *readThrough[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &readThrough[T]{
		cache:  c,
		key:    key,
		ttl:    ttl,
		logger: logger,
		fetch:  fetch,
		refreshDelay: func() time.Duration {
			return time.Duration(rand.Intn(1000)) * time.Millisecond
		},
	}
}

// Get returns the cached value or fetches and caches it.
func (r *readThrough[T]) Get(ctx context.Context) (T, error) {
	var zero T

	var cached T
	err := r.cache.Get(ctx, r.key, &cached)
	switch {
	case err == nil:
		r.logger.Debug("cache hit", zap.String("key", r.key))
		r.refreshInBackground()
		return cached, nil

	case errors.Is(err, redis.Nil):
		r.logger.Debug("cache miss", zap.String("key", r.key))

	default:
		r.logger.Warn("cache get error (treating as miss)", zap.String("key", r.key), zap.Error(err))
	}

	gen := r.gen.Load()
	v, err, shared := r.sf.Do(r.key, func() (any, error) {
		value, err := r.fetch(ctx)
		if err != nil {
			r.logger.Error("fetch failed", zap.String("key", r.key), zap.Error(err))
			return zero, err
		}
		go r.store(value, gen)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		r.logger.Error("singleflight type mismatch", zap.String("key", r.key))
		return zero, fmt.Errorf("type mismatch for key %q", r.key)
	}

	if shared {
		r.logger.Debug("singleflight shared result", zap.String("key", r.key))
	}
	return value, nil
}

// Invalidate drops the cached value after a write.
func (r *readThrough[T]) Invalidate(ctx context.Context) {
	r.gen.Add(1)
	r.sf.Forget(r.key)
	if err := r.cache.Delete(ctx, r.key); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("key", r.key), zap.Error(err))
		return
	}
	r.logger.Debug("cache invalidated", zap.String("key", r.key))
}

func (r *readThrough[T]) refreshInBackground() {
	gen := r.gen.Load()
	go func() {
		time.Sleep(r.refreshDelay())

		_, _, _ = r.sf.Do(r.key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := r.fetch(ctx)
			if err != nil {
				r.logger.Warn("background refresh failed", zap.String("key", r.key), zap.Error(err))
				return nil, err
			}
			r.store(value, gen)
			return value, nil
		})
	}()
}

func (r *readThrough[T]) store(value T, gen uint64) {
	if r.gen.Load() != gen {
		r.logger.Debug("dropping stale cache write", zap.String("key", r.key))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(r.ttl)
	if err := r.cache.Set(ctx, r.key, value, ttl); err != nil {
		r.logger.Warn("failed to set cache", zap.String("key", r.key), zap.Error(err))
		return
	}
	// An Invalidate that ran between the check and the Set may have deleted
	// before our write landed.
	if r.gen.Load() != gen {
		if err := r.cache.Delete(ctx, r.key); err != nil {
			r.logger.Warn("failed to drop stale cache write", zap.String("key", r.key), zap.Error(err))
			return
		}
		r.logger.Debug("dropped cache write raced by invalidate", zap.String("key", r.key))
		return
	}
	r.logger.Debug("cache populated", zap.String("key", r.key), zap.Duration("ttl", ttl))
}
