package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/godilite/review-server/internal/repository/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Schema is the document table used by SQLiteStore. Each row is one
// document body under a logical collection path.
const Schema = `
	CREATE TABLE IF NOT EXISTS documents (
		id         TEXT PRIMARY KEY,
		path       TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_path ON documents (path);
`

// SQLiteStore keeps review documents in a local database with the same
// create/read contract as DocumentStore.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

func NewSQLiteStore(db *sql.DB, path string, logger *zap.Logger) *SQLiteStore {
	if db == nil {
		panic("db must not be nil")
	}
	if path == "" {
		path = "reviews"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, path: path, logger: logger.Named("sqlite-store")}
}

// Create stores the document under a fresh uuid key.
func (s *SQLiteStore) Create(ctx context.Context, doc models.ReviewDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode review: %w", err)
	}

	id := uuid.NewString()
	const query = `INSERT INTO documents (id, path, body, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, s.path, string(body), doc.Timestamp); err != nil {
		return "", fmt.Errorf("%w: insert document: %v", models.ErrUnavailable, err)
	}

	s.logger.Debug("review document created", zap.String("id", id))
	return id, nil
}

// List returns every document under the store's path keyed by id.
func (s *SQLiteStore) List(ctx context.Context) (map[string]models.ReviewDocument, error) {
	const query = `SELECT id, body FROM documents WHERE path = ?`

	rows, err := s.db.QueryContext(ctx, query, s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	docs := make(map[string]models.ReviewDocument)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("%w: scan document row: %v", models.ErrUnavailable, err)
		}

		var doc models.ReviewDocument
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			s.logger.Warn("skipping undecodable review document",
				zap.String("id", id),
				zap.Error(err))
			continue
		}
		docs[id] = doc
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %v", models.ErrUnavailable, err)
	}
	return docs, nil
}
