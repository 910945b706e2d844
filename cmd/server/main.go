package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Leon-Chun/twitter-fullstack-2020/config"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/handler"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/service"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/upload"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/auth"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/database"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/tracing"
)

// @title Simple Twitter API
// @version 1.0
// @description JSON endpoints of the simple-twitter server. Pages are server rendered.
// @BasePath /
// @securityDefinitions.apikey SessionCookie
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
			cfg.Sentry.DSN = ""
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close(db)

	cache := openRedis(ctx, cfg.Redis)
	if cache != nil {
		defer cache.Close()
	}

	uploader, err := buildUploader(ctx, cfg.Storage)
	if err != nil {
		logger.Error("setup storage failed", zap.Error(err))
		os.Exit(1)
	}

	users := repository.NewUserRepository(db)
	tweets := repository.NewTweetRepository(db)
	likes := repository.NewLikeRepository(db)
	replies := repository.NewReplyRepository(db)
	follows := repository.NewFollowshipRepository(db)

	rec := service.NewRecommender(users, follows, cache, cfg.Cache.RankingTTL)
	refresher := service.NewRankingRefresher(rec, 1024)
	stopRefresher := refresher.Start(2)

	relSvc := service.NewRelationshipService(users, follows, refresher)
	userSvc := service.NewUserService(service.UserDeps{
		Users:     users,
		Tweets:    tweets,
		Likes:     likes,
		Replies:   replies,
		Follows:   follows,
		Relations: relSvc,
		Rec:       rec,
		Ranking:   refresher,
		Uploader:  uploader,
	})
	tweetSvc := service.NewTweetService(tweets, likes, replies, rec)
	sessions := service.NewSessionStore(cache)
	tokens := auth.NewJWTService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	h := handler.New(handler.Deps{
		Users:     userSvc,
		Tweets:    tweetSvc,
		Relations: relSvc,
		Sessions:  sessions,
		Tokens:    tokens,
		Cookie:    handler.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.SecureCookie},
	})
	router := api.NewRouter(h, api.RouterConfig{
		Mode:        cfg.Server.Mode,
		Sentry:      cfg.Sentry.DSN != "",
		Tracing:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		RateRPS:     cfg.RateLimit.RPS,
		RateBurst:   cfg.RateLimit.Burst,
		Auth: middleware.AuthConfig{
			Tokens:     tokens,
			Revoked:    sessions,
			Users:      users,
			CookieName: cfg.Auth.CookieName,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.HTTPHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	_ = stopRefresher(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	logger.Info("bye")
}

// openRedis 未配置或不可用时返回 nil，排名缓存与登出撤销随之降级
func openRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func buildUploader(ctx context.Context, cfg config.StorageConfig) (upload.Uploader, error) {
	if cfg.Bucket == "" {
		logger.Warn("storage bucket not set, image uploads disabled")
		return upload.Disabled{}, nil
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Info("using s3 bucket", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	s3u := upload.NewS3Uploader(client, upload.S3Options{
		Bucket:        cfg.Bucket,
		KeyPrefix:     cfg.KeyPrefix,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	return upload.NewBreakerUploader(s3u, upload.BreakerSettings{}), nil
}
