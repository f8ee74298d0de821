package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godilite/review-server/internal/config"
	handler "github.com/godilite/review-server/internal/grpc"
	"github.com/godilite/review-server/internal/service"
	"github.com/godilite/review-server/pkg/cache"
	grpcsrv "github.com/godilite/review-server/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	closeStore func() error
	cache      handler.Cacher
	sessions   *service.SessionManager
	grpcServer *grpcsrv.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, closeStore, err := NewReviewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var cacheClient handler.Cacher = cache.Nop{}
	if cfg.CacheEnabled() {
		c, err := cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err != nil {
			_ = closeStore()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacheClient = c
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("Cache disabled, summaries read straight from the store")
	}

	sessions := service.NewSessionManager(store, logger, cfg.SessionTTL,
		service.WithStoreTimeout(cfg.StoreTimeout),
	)

	grpcHandlers := handler.NewGRPCHandlers(sessions, cacheClient, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	)
	if err != nil {
		_ = cacheClient.Close()
		_ = closeStore()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterReviewServiceServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		closeStore: closeStore,
		cache:      cacheClient,
		sessions:   sessions,
		grpcServer: grpcServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go a.sessions.Run(sweepCtx)

	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Warn("gRPC shutdown did not drain in time", zap.Error(err))
	}
	stopSweep()

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.closeStore(); err != nil {
		a.logger.Error("store shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed", zap.Int("open_sessions", a.sessions.Len()))

	_ = a.logger.Sync()
	return nil
}
