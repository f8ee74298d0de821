package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/godilite/review-server/internal/config"
	"github.com/godilite/review-server/internal/repository"
	"github.com/godilite/review-server/internal/service"
	dbbuilder "github.com/godilite/review-server/pkg/database"
	"go.uber.org/zap"
)

// NewReviewStore builds the configured review store. The returned close
// function releases whatever the backend holds and is never nil.
func NewReviewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.ReviewStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendSQLite:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create database directory: %w", err)
			}
		}

		db, err := dbbuilder.New(ctx,
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(cfg.DBPath),
			dbbuilder.WithSchema(repository.Schema),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("database init failed: %w", err)
		}
		logger.Info("sqlite review store initialized", zap.String("path", cfg.DBPath))

		return repository.NewSQLiteStore(db, cfg.StorePath, logger), db.Close, nil

	case config.StoreBackendFirebase:
		store, err := repository.NewFirebaseStore(ctx, repository.FirebaseStoreConfig{
			DatabaseURL: cfg.StoreURL,
			Path:        cfg.StorePath,
			Timeout:     cfg.StoreTimeout,
		}, logger, repository.FirebaseAuthOptions(cfg.StoreURL, cfg.FirebaseCredentialsFile)...)
		if err != nil {
			return nil, nil, fmt.Errorf("firebase store init failed: %w", err)
		}
		logger.Info("firebase review store initialized",
			zap.String("url", cfg.StoreURL),
			zap.String("path", cfg.StorePath))

		return store, func() error { return nil }, nil

	default:
		store, err := repository.NewDocumentStore(
			repository.WithBaseURL(cfg.StoreURL),
			repository.WithPath(cfg.StorePath),
			repository.WithAuthToken(cfg.StoreAuthToken),
			repository.WithTimeout(cfg.StoreTimeout),
			repository.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("document store init failed: %w", err)
		}
		logger.Info("http review store initialized",
			zap.String("url", cfg.StoreURL),
			zap.String("path", cfg.StorePath))

		return store, func() error { return nil }, nil
	}
}
