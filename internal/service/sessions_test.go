package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godilite/review-server/internal/repository/models"
	"github.com/godilite/review-server/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSessionManager(t *testing.T) {
	t.Run("nil store panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewSessionManager(nil, zap.NewNop(), time.Minute)
		})
	})

	t.Run("zero TTL uses default", func(t *testing.T) {
		m := NewSessionManager(&mocks.MockReviewStore{}, zap.NewNop(), 0)
		assert.Equal(t, defaultSessionTTL, m.ttl)
	})
}

func TestSessionManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMemoryStore(map[string]models.ReviewDocument{
		"a": {Name: "Ann", Rating: 4, Text: "Nice", Timestamp: 1},
	})
	m := NewSessionManager(store, zap.NewNop(), time.Minute)

	id, agg, err := m.Open(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, agg.Snapshot().Aggregate.Total)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, agg, got)

	other, _, err := m.Open(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	require.NoError(t, m.Close(id))
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(id), ErrSessionNotFound)
	assert.Equal(t, 1, m.Len())
}

func TestSessionManager_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	m := NewSessionManager(mocks.NewMemoryStore(nil), zap.NewNop(), 10*time.Minute)
	m.now = func() time.Time { return now }

	stale, _, err := m.Open(ctx)
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	fresh, _, err := m.Open(ctx)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh)
	assert.NoError(t, err)
}

func TestSessionManager_Run(t *testing.T) {
	m := NewSessionManager(mocks.NewMemoryStore(nil), zap.NewNop(), 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	_, _, err := m.Open(ctx)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSessionManager_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("reports read failures", func(t *testing.T) {
		m := NewSessionManager(&mocks.MockReviewStore{
			ListFunc: func(ctx context.Context) (map[string]models.ReviewDocument, error) {
				return nil, errors.New("timeout")
			},
		}, zap.NewNop(), time.Minute)

		_, err := m.Summary(ctx)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("derives statistics", func(t *testing.T) {
		m := NewSessionManager(mocks.NewMemoryStore(map[string]models.ReviewDocument{
			"a": {Name: "Ann", Rating: 5, Text: "x", Timestamp: 1},
			"b": {Name: "Bob", Rating: 3, Text: "y", Timestamp: 2},
		}), zap.NewNop(), time.Minute)

		state, err := m.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, state.Total)
		assert.Equal(t, 4.0, state.AverageRating)
		assert.Equal(t, "b", state.Reviews[0].ID)
	})
}
