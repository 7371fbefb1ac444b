package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/authkit/user-service/docs" // swagger docs

	"github.com/authkit/user-service/internal/api"
	"github.com/authkit/user-service/internal/api/handler"
	"github.com/authkit/user-service/internal/core/ports"
	"github.com/authkit/user-service/internal/core/service"
	mongodb "github.com/authkit/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/authkit/user-service/internal/infrastructure/db/redis"
	"github.com/authkit/user-service/internal/pkg/config"
	"github.com/authkit/user-service/internal/pkg/password"
	"github.com/authkit/user-service/internal/pkg/token"
	"github.com/authkit/user-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title User Service API
// @version 1.0
// @description User registration, login and role-protected routes.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer disconnectMongo(mongoClient.Disconnect, log)

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	readiness := map[string]handler.Pinger{
		"mongodb": handler.MongoPinger(db),
	}

	// --- Redis (optional) ---
	var limiter ports.LoginLimiter
	redisCfg := redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if redisCfg.Enabled() {
		rdb, err := redisdb.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)

		readiness["redis"] = handler.RedisPinger(rdb)
		if cfg.ThrottleEnabled() {
			limiter = redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
			log.Info().
				Int("max_attempts", cfg.Login.MaxAttempts).
				Dur("window", cfg.Login.Window).
				Msg("login throttle enabled")
		}
	}

	// --- Services ---
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(users, hasher, tokens, limiter, log)

	e := api.NewRouter(api.Deps{
		Auth:      authService,
		Tokens:    tokens,
		Users:     users,
		Readiness: readiness,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func disconnectMongo(disconnect func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}
