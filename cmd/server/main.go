package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/api"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/cache"
	"github.com/d60-Lab/microblog/internal/config"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/internal/storage"
	"github.com/d60-Lab/microblog/internal/telemetry"
	"github.com/d60-Lab/microblog/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("load config: " + err.Error())
	}
	if err := logger.Init(cfg.Mode); err != nil {
		panic("init logger: " + err.Error())
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

	shutdownTracing, err := telemetry.Setup(ctx, "microblog", cfg.Otel.Endpoint)
	if err != nil {
		logger.Warn("tracing setup failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	db, err := repository.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		logger.Error("open db", zap.Error(err))
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, home page will be served uncached", zap.Error(err))
	}
	pageCache := cache.NewPageCache(rdb, cfg.Cache.PageTTL)

	var images storage.ImageStore
	if cfg.Minio.Endpoint != "" {
		images, err = storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			PublicURL: cfg.Minio.PublicURL,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			logger.Error("connect minio", zap.Error(err))
			return
		}
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	posts := service.NewPostService(postRepo, groupRepo, userRepo, commentRepo, followRepo, cfg.Listing.PageSize)
	relations := service.NewRelationshipService(followRepo, userRepo)
	accounts := service.NewAccountService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	h := handler.NewHandler(posts, relations, accounts, images)
	router := api.NewRouter(h, accounts, pageCache, api.Options{
		Mode:           cfg.Mode,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		EnableSentry:   cfg.Sentry.DSN != "",
	})

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("bye")
}
