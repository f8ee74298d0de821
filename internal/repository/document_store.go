package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/godilite/review-server/internal/repository/models"
	"go.uber.org/zap"
)

const maxErrorBody = 1 << 16

type DocumentStoreOptions struct {
	BaseURL    string
	Path       string
	AuthToken  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type DocumentStoreOption func(*DocumentStoreOptions)

func WithBaseURL(u string) DocumentStoreOption {
	return func(o *DocumentStoreOptions) { o.BaseURL = u }
}

func WithPath(p string) DocumentStoreOption {
	return func(o *DocumentStoreOptions) { o.Path = p }
}

func WithAuthToken(token string) DocumentStoreOption {
	return func(o *DocumentStoreOptions) { o.AuthToken = token }
}

func WithTimeout(d time.Duration) DocumentStoreOption {
	return func(o *DocumentStoreOptions) { o.Timeout = d }
}

func WithHTTPClient(c *http.Client) DocumentStoreOption {
	return func(o *DocumentStoreOptions) { o.HTTPClient = c }
}

func WithLogger(l *zap.Logger) DocumentStoreOption {
	return func(o *DocumentStoreOptions) { o.Logger = l }
}

// DocumentStore talks to a realtime document database over its REST
// interface: a push is a POST to {base}/{path}.json answered with the new
// key, a read is a GET on the same URL answered with an object keyed by id.
type DocumentStore struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewDocumentStore builds a store client. The base URL is required.
func NewDocumentStore(opts ...DocumentStoreOption) (*DocumentStore, error) {
	options := &DocumentStoreOptions{
		Path:    "reviews",
		Timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.BaseURL == "" {
		return nil, fmt.Errorf("document store base URL cannot be empty")
	}
	path := strings.Trim(options.Path, "/")
	if path == "" {
		return nil, fmt.Errorf("document store path cannot be empty")
	}

	base, err := url.Parse(strings.TrimRight(options.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse document store URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("document store URL must be http or https, got %q", base.Scheme)
	}
	base.Path = base.Path + "/" + path + ".json"
	if options.AuthToken != "" {
		q := base.Query()
		q.Set("auth", options.AuthToken)
		base.RawQuery = q.Encode()
	}

	client := options.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
			Timeout: options.Timeout,
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DocumentStore{
		client:   client,
		endpoint: base.String(),
		logger:   logger.Named("document-store"),
	}, nil
}

// Create pushes one review and returns the key the store assigned to it.
func (s *DocumentStore) Create(ctx context.Context, doc models.ReviewDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode review: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var result models.CreateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode create response: %v", models.ErrUnavailable, err)
	}
	if result.Name == "" {
		return "", fmt.Errorf("%w: create response carried no key", models.ErrUnavailable)
	}

	s.logger.Debug("review document created", zap.String("id", result.Name))
	return result.Name, nil
}

// List reads every document under the path. An empty path reads as null
// and yields an empty map. Documents that do not decode are skipped.
func (s *DocumentStore) List(ctx context.Context) (map[string]models.ReviewDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode collection: %v", models.ErrUnavailable, err)
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

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return classifyStatus(resp.StatusCode, extractErrorMessage(msg))
}

// classifyStatus maps a failed store response onto the store sentinels. A
// client error other than a timeout or rate limit is a rejection.
func classifyStatus(code int, detail string) error {
	if code >= 400 && code < 500 && code != http.StatusRequestTimeout && code != http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d: %s", models.ErrRejected, code, detail)
	}
	return fmt.Errorf("%w: status %d: %s", models.ErrUnavailable, code, detail)
}

// extractErrorMessage pulls {"error": "..."} out of a store error body and
// falls back to the raw text.
func extractErrorMessage(body []byte) string {
	var structured struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error != "" {
		return structured.Error
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty body"
	}
	return text
}
