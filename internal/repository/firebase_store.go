package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/errorutils"
	"github.com/godilite/review-server/internal/repository/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

type FirebaseStoreConfig struct {
	// DatabaseURL is the realtime database root, or an emulator URL of the
	// form http://host:port?ns=name.
	DatabaseURL string
	Path        string
	Timeout     time.Duration
}

// FirebaseStore keeps reviews in a Firebase Realtime Database through the
// Admin SDK. Create is a push under Path and List reads the whole node.
type FirebaseStore struct {
	ref     *db.Ref
	timeout time.Duration
	logger  *zap.Logger
}

// NewFirebaseStore opens a database client. Client options carry the
// credentials, see FirebaseAuthOptions.
func NewFirebaseStore(ctx context.Context, cfg FirebaseStoreConfig, logger *zap.Logger, opts ...option.ClientOption) (*FirebaseStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("firebase database URL cannot be empty")
	}
	path := strings.Trim(cfg.Path, "/")
	if path == "" {
		return nil, fmt.Errorf("firebase path cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: cfg.DatabaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase database client: %w", err)
	}

	return &FirebaseStore{
		ref:     client.NewRef(path),
		timeout: cfg.Timeout,
		logger:  logger.Named("firebase-store"),
	}, nil
}

// emulatorToken is the bearer token the database emulator grants admin
// rights to.
const emulatorToken = "owner"

// FirebaseAuthOptions picks credentials for a database URL: a service
// account file when one is given, the emulator's admin token for a plain
// http URL, and anonymous access for a production URL without one.
func FirebaseAuthOptions(databaseURL, credentialsFile string) []option.ClientOption {
	switch {
	case credentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
	case strings.HasPrefix(databaseURL, "https://"):
		return []option.ClientOption{option.WithoutAuthentication()}
	default:
		return []option.ClientOption{
			option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: emulatorToken})),
		}
	}
}

func (s *FirebaseStore) Create(ctx context.Context, doc models.ReviewDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.ref.Push(ctx, doc)
	if err != nil {
		return "", classifyFirebaseError(err)
	}
	if created.Key == "" || created.Path == s.ref.Path {
		return "", fmt.Errorf("%w: push response carried no key", models.ErrUnavailable)
	}

	s.logger.Debug("review document created", zap.String("id", created.Key))
	return created.Key, nil
}

// List reads the node. A missing node yields an empty map and documents
// that do not decode are skipped.
func (s *FirebaseStore) List(ctx context.Context) (map[string]models.ReviewDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var raw map[string]json.RawMessage
	if err := s.ref.Get(ctx, &raw); err != nil {
		return nil, classifyFirebaseError(err)
	}

	docs := make(map[string]models.ReviewDocument, len(raw))
	for id, msg := range raw {
		var doc models.ReviewDocument
		if err := json.Unmarshal(msg, &doc); err != nil {
			s.logger.Warn("skipping undecodable review document",
				zap.String("id", id),
				zap.Error(err))
			continue
		}
		docs[id] = doc
	}
	return docs, nil
}

func classifyFirebaseError(err error) error {
	if resp := errorutils.HTTPResponse(err); resp != nil {
		return classifyStatus(resp.StatusCode, err.Error())
	}
	if errorutils.IsInvalidArgument(err) || errorutils.IsPermissionDenied(err) || errorutils.IsUnauthenticated(err) {
		return fmt.Errorf("%w: %v", models.ErrRejected, err)
	}
	return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
}
