package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/godilite/review-server/internal/config"
	"github.com/godilite/review-server/internal/repository"
	"github.com/godilite/review-server/internal/repository/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewReviewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite backend creates the database directory", func(t *testing.T) {
		cfg := &config.Config{
			StoreBackend: config.StoreBackendSQLite,
			StorePath:    "reviews",
			DBDriver:     "sqlite3",
			DBPath:       filepath.Join(t.TempDir(), "nested", "reviews.db"),
		}

		store, closeStore, err := NewReviewStore(ctx, cfg, zap.NewNop())
		require.NoError(t, err)
		defer closeStore()

		assert.IsType(t, &repository.SQLiteStore{}, store)

		id, err := store.Create(ctx, models.ReviewDocument{Name: "Ann", Rating: 4, Text: "ok", Date: "3/7/2025", Timestamp: 1})
		require.NoError(t, err)

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, docs, id)
	})

	t.Run("http backend", func(t *testing.T) {
		cfg := &config.Config{
			StoreBackend: config.StoreBackendHTTP,
			StoreURL:     "http://localhost:9000",
			StorePath:    "reviews",
		}

		store, closeStore, err := NewReviewStore(ctx, cfg, zap.NewNop())
		require.NoError(t, err)
		assert.NoError(t, closeStore())
		assert.IsType(t, &repository.DocumentStore{}, store)
	})

	t.Run("firebase backend against the emulator", func(t *testing.T) {
		cfg := &config.Config{
			StoreBackend: config.StoreBackendFirebase,
			StoreURL:     "http://localhost:9000?ns=reviews-local",
			StorePath:    "reviews",
		}

		store, closeStore, err := NewReviewStore(ctx, cfg, zap.NewNop())
		require.NoError(t, err)
		assert.NoError(t, closeStore())
		assert.IsType(t, &repository.FirebaseStore{}, store)
	})

	t.Run("firebase backend rejects an emulator url without namespace", func(t *testing.T) {
		cfg := &config.Config{
			StoreBackend: config.StoreBackendFirebase,
			StoreURL:     "http://localhost:9000",
			StorePath:    "reviews",
		}

		_, _, err := NewReviewStore(ctx, cfg, zap.NewNop())
		assert.ErrorContains(t, err, "firebase store init failed")
	})

	t.Run("http backend rejects a bad url", func(t *testing.T) {
		cfg := &config.Config{
			StoreBackend: config.StoreBackendHTTP,
			StoreURL:     "ftp://example.com",
			StorePath:    "reviews",
		}

		_, _, err := NewReviewStore(ctx, cfg, zap.NewNop())
		assert.ErrorContains(t, err, "document store init failed")
	})
}
