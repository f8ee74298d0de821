package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/review-server/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second

	cacheKeySummary = "grpc:review_summary"
)

type GRPCHandlers struct {
	sessions ReviewSessions
	summary  *readThrough[service.AggregateState]
	logger   *zap.Logger
	cacheTTL time.Duration
}

var _ ReviewServiceServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(sessions ReviewSessions, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if sessions == nil {
		panic("nil ReviewSessions provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	logger = logger.Named("grpc-handler")

	return &GRPCHandlers{
		sessions: sessions,
		summary:  newReadThrough(cache, cacheKeySummary, ttl, logger, sessions.Summary),
		logger:   logger,
		cacheTTL: ttl,
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		s.logger.Info("session not found", zap.String("op", op))
		return status.Error(codes.NotFound, "session not found")
	case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrNotSubmittable):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrSubmitInFlight):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, service.ErrStoreRejected):
		s.logger.Warn("store rejected review", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, service.NoticeRejected)
	case errors.Is(err, service.ErrStoreUnavailable):
		s.logger.Error("store unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "review store unavailable")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// withSession resolves the session, applies fn and answers with its state.
func (s *GRPCHandlers) withSession(ctx context.Context, op string, req *structpb.Struct, fn func(agg *service.RatingAggregator) error) (*structpb.Struct, error) {
	id, err := sessionIDArg(req)
	if err != nil {
		return nil, err
	}

	agg, err := s.sessions.Get(id)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	if fn != nil {
		if err := fn(agg); err != nil {
			return nil, s.handleError(ctx, op, err)
		}
	}
	return viewToStruct(id, agg.Snapshot())
}

func (s *GRPCHandlers) OpenSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	id, agg, err := s.sessions.Open(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "OpenSession", err)
	}
	return viewToStruct(id, agg.Snapshot())
}

func (s *GRPCHandlers) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := sessionIDArg(req)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Close(id); err != nil {
		return nil, s.handleError(ctx, "CloseSession", err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCHandlers) SetRating(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rating, err := ratingArg(req)
	if err != nil {
		return nil, err
	}
	return s.withSession(ctx, "SetRating", req, func(agg *service.RatingAggregator) error {
		return agg.SetRating(rating)
	})
}

func (s *GRPCHandlers) PreviewRating(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rating, err := ratingArg(req)
	if err != nil {
		return nil, err
	}
	return s.withSession(ctx, "PreviewRating", req, func(agg *service.RatingAggregator) error {
		return agg.PreviewRating(rating)
	})
}

func (s *GRPCHandlers) ClearPreview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withSession(ctx, "ClearPreview", req, func(agg *service.RatingAggregator) error {
		agg.ClearPreview()
		return nil
	})
}

// UpdateForm sets whichever of name and text the request carries.
func (s *GRPCHandlers) UpdateForm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withSession(ctx, "UpdateForm", req, func(agg *service.RatingAggregator) error {
		if name, ok := stringArg(req, "name"); ok {
			agg.SetName(name)
		}
		if text, ok := stringArg(req, "text"); ok {
			agg.SetText(text)
		}
		return nil
	})
}

func (s *GRPCHandlers) ClearForm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withSession(ctx, "ClearForm", req, func(agg *service.RatingAggregator) error {
		agg.ClearForm()
		return nil
	})
}

// SubmitReview sends the session's form. On success the cached summary is
// dropped so the next GetSummary reads the new review.
func (s *GRPCHandlers) SubmitReview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	return s.withSession(ctx, "SubmitReview", req, func(agg *service.RatingAggregator) error {
		if err := agg.SubmitReview(ctx); err != nil {
			return err
		}
		s.summary.Invalidate(ctx)
		return nil
	})
}

func (s *GRPCHandlers) GetSessionState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.withSession(ctx, "GetSessionState", req, nil)
}

func (s *GRPCHandlers) GetSummary(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	summary, err := s.summary.Get(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "GetSummary", err)
	}
	return summaryToStruct(summary)
}
