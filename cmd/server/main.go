package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/twiese99/EmojiApp/internal/auth"
	"github.com/twiese99/EmojiApp/internal/config"
	"github.com/twiese99/EmojiApp/internal/logging"
	"github.com/twiese99/EmojiApp/internal/middleware"
	"github.com/twiese99/EmojiApp/internal/security"
	"github.com/twiese99/EmojiApp/internal/server"
	"github.com/twiese99/EmojiApp/internal/static"
	"github.com/twiese99/EmojiApp/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogPretty)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ── Repository ───────────────────────────────────────────
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open repository")
	}
	defer repo.Close()

	// ── Redis phrase cache ───────────────────────────────────
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect")
		}
		defer rdb.Close()
		repo = store.NewCachedRepository(repo, store.NewRedisCache(rdb, "emojiapp:"), cfg.PhraseCacheTTL)
	}

	// ── MinIO static assets ──────────────────────────────────
	var assets static.Source
	if cfg.MinioEndpoint != "" {
		assetStore, err := store.NewAssetStore(ctx, store.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("minio connect")
		}
		if err := static.Seed(ctx, assetStore); err != nil {
			logger.Fatal().Err(err).Msg("seed static assets")
		}
		assets = assetStore
	}

	// ── Security ─────────────────────────────────────────────
	hasher, err := security.NewHasherFromHex(cfg.SecretKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("SECRET_KEY")
	}
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	var limiter *middleware.RateLimiter
	if cfg.LoginRatePerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)
		limiter.StartCleanup(ctx, 10*time.Minute)
	}

	// ── Router ───────────────────────────────────────────────
	handler, err := server.NewRouter(server.Deps{
		Repo:        repo,
		Assets:      assets,
		Hasher:      hasher,
		Tokens:      tokens,
		BcryptCost:  cfg.BcryptCost,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		Metrics:     middleware.NewMetrics(),
		Limiter:     limiter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build router")
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("driver", cfg.DBDriver).Msg("EmojiApp listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (store.Repository, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return pg, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		m := store.NewMongoStore(client, cfg.MongoDB)
		if err := m.EnsureIndexes(ctx); err != nil {
			m.Close()
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return m, nil

	default:
		return store.NewMemoryStore(), nil
	}
}
