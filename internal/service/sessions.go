package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSessionTTL = 30 * time.Minute

type session struct {
	aggregator *RatingAggregator
	lastSeen   time.Time
}

// SessionManager hands out one RatingAggregator per remote form session.
// Sessions idle for longer than the TTL are swept.
type SessionManager struct {
	store  ReviewStore
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
	opts   []AggregatorOption

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionManager(store ReviewStore, logger *zap.Logger, ttl time.Duration, opts ...AggregatorOption) *SessionManager {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		store:    store,
		logger:   logger.Named("sessions"),
		ttl:      ttl,
		now:      time.Now,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// Open starts a session and loads the current reviews into it.
func (m *SessionManager) Open(ctx context.Context) (string, *RatingAggregator, error) {
	uid, err := uuid.NewRandom()
	if err != nil {
		return "", nil, fmt.Errorf("generate session id: %w", err)
	}
	id := uid.String()
	agg := NewRatingAggregator(m.store, m.logger, m.opts...)
	agg.LoadReviews(ctx)

	m.mu.Lock()
	m.sessions[id] = &session{aggregator: agg, lastSeen: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("session opened", zap.String("session_id", id), zap.Int("open", count))
	return id, agg, nil
}

// Get returns the session's aggregator and marks it as used.
func (m *SessionManager) Get(id string) (*RatingAggregator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s.aggregator, nil
}

func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Summary reads the collection without going through a session.
func (m *SessionManager) Summary(ctx context.Context) (AggregateState, error) {
	return LoadAggregate(ctx, m.store, m.logger)
}

// Sweep drops idle sessions and returns how many went. Sessions with a
// submission in flight are kept.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) && !s.aggregator.Snapshot().Input.Submitting {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("swept idle sessions", zap.Int("removed", removed), zap.Int("open", len(m.sessions)))
	}
	return removed
}

// Len is the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps every half TTL until ctx is done.
func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
