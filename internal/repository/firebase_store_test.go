package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/godilite/review-server/internal/repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newFirebaseTestStore points the SDK at an httptest server in emulator
// mode.
func newFirebaseTestStore(t *testing.T, handler http.HandlerFunc) *FirebaseStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	url := server.URL + "?ns=reviews-test"
	store, err := NewFirebaseStore(context.Background(), FirebaseStoreConfig{
		DatabaseURL: url,
		Path:        "/reviews/",
		Timeout:     2 * time.Second,
	}, zaptest.NewLogger(t), FirebaseAuthOptions(url, "")...)
	require.NoError(t, err)
	return store
}

func TestNewFirebaseStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing URL", func(t *testing.T) {
		_, err := NewFirebaseStore(ctx, FirebaseStoreConfig{Path: "reviews"}, nil)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFirebaseStore(ctx, FirebaseStoreConfig{DatabaseURL: "http://localhost:9000?ns=x", Path: "/"}, nil)
		assert.Error(t, err)
	})

	t.Run("emulator URL without namespace", func(t *testing.T) {
		_, err := NewFirebaseStore(ctx, FirebaseStoreConfig{DatabaseURL: "http://localhost:9000", Path: "reviews"}, nil)
		assert.Error(t, err)
	})
}

func TestFirebaseAuthOptions(t *testing.T) {
	assert.Len(t, FirebaseAuthOptions("https://x.firebaseio.com", "/etc/sa.json"), 1)
	assert.Len(t, FirebaseAuthOptions("https://x.firebaseio.com", ""), 1)
	assert.Len(t, FirebaseAuthOptions("http://localhost:9000?ns=x", ""), 1)
}

func TestFirebaseStore_Create(t *testing.T) {
	ctx := context.Background()
	doc := models.ReviewDocument{Name: "Ann", Rating: 5, Text: "Great", Date: "1/2/2025", Timestamp: 1735776000000}

	t.Run("returns pushed key", func(t *testing.T) {
		store := newFirebaseTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/reviews.json", r.URL.Path)
			assert.Equal(t, "reviews-test", r.URL.Query().Get("ns"))
			assert.Equal(t, "Bearer owner", r.Header.Get("Authorization"))

			var got models.ReviewDocument
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, doc, got)

			_, _ = w.Write([]byte(`{"name":"-Nfb001"}`))
		})

		id, err := store.Create(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, "-Nfb001", id)
	})

	t.Run("client error is rejected", func(t *testing.T) {
		store := newFirebaseTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid data; couldn't parse JSON object"}`))
		})

		_, err := store.Create(ctx, doc)
		assert.ErrorIs(t, err, models.ErrRejected)
	})

	t.Run("permission denied is rejected", func(t *testing.T) {
		store := newFirebaseTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Permission denied"}`))
		})

		_, err := store.Create(ctx, doc)
		assert.ErrorIs(t, err, models.ErrRejected)
		assert.Contains(t, err.Error(), "Permission denied")
	})
}

func TestFirebaseStore_List(t *testing.T) {
	ctx := context.Background()

	t.Run("null node is empty", func(t *testing.T) {
		store := newFirebaseTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/reviews.json", r.URL.Path)
			_, _ = w.Write([]byte(`null`))
		})

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("skips undecodable documents", func(t *testing.T) {
		store := newFirebaseTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"-Na": {"name":"Ann","rating":4,"text":"Good","date":"1/2/2025","timestamp":1},
				"-Nb": "not a review"
			}`))
		})

		docs, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Ann", docs["-Na"].Name)
		assert.Equal(t, 4, docs["-Na"].Rating)
	})
}

func TestClassifyFirebaseError(t *testing.T) {
	err := classifyFirebaseError(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, err, models.ErrUnavailable)
	assert.NotErrorIs(t, err, models.ErrRejected)
}
