package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/storyblog/config"
	"github.com/d60-Lab/storyblog/internal/api"
	"github.com/d60-Lab/storyblog/internal/api/handler"
	"github.com/d60-Lab/storyblog/internal/cache"
	"github.com/d60-Lab/storyblog/internal/repository"
	"github.com/d60-Lab/storyblog/internal/service"
	"github.com/d60-Lab/storyblog/pkg/database"
	"github.com/d60-Lab/storyblog/pkg/logger"
	"github.com/d60-Lab/storyblog/pkg/tracing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing := must(tracing.Init(ctx, cfg))
	defer func() { _ = shutdownTracing(context.Background()) }()

	db := must(database.InitDB(cfg))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer redisClient.Close()
	}
	likeCounts := cache.NewLikeCountCache(redisClient, cfg.Redis.TTL)

	// repositories & services
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	refresher := service.NewCountRefresher(likeRepo, likeCounts, 10000)
	stopRefresher := refresher.Start(2)
	defer func() { _ = stopRefresher(context.Background()) }()

	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	postSvc := service.NewPostService(postRepo, likeRepo, commentRepo)
	likeSvc := service.NewLikeService(likeRepo, likeCounts, refresher)
	commentSvc := service.NewCommentService(commentRepo, userRepo)

	h := handler.New(cfg, authSvc, postSvc, likeSvc, commentSvc)
	router := api.NewRouter(cfg, h, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
