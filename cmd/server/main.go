package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/messagely/messaging-api/internal/api"
	"github.com/messagely/messaging-api/internal/core/service"
	"github.com/messagely/messaging-api/internal/infrastructure/config"
	mongodb "github.com/messagely/messaging-api/internal/infrastructure/db/mongo"
	redisdb "github.com/messagely/messaging-api/internal/infrastructure/db/redis"
	"github.com/messagely/messaging-api/internal/infrastructure/queue"
	"github.com/messagely/messaging-api/pkg/logger"
)

const loginRecorderWorkers = 4

// @title           Messagely API
// @version         1.0
// @description     Account and messaging backend with JWT authentication.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger options come from config, so this one failure goes to stderr.
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Env: cfg.Env})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	accountRepo := mongodb.NewAccountRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure account indexes")
	}
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure message indexes")
	}

	redisClient, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := service.NewAccountService(accountRepo, hasher, tokens)
	messages := service.NewMessageService(messageRepo, accountRepo, redisdb.NewIdempotencyStore(redisClient), log)

	recorder := queue.NewLoginRecorder(loginRecorderWorkers, accounts, log)
	recorder.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Messages: messages,
		Recorder: recorder,
		Mongo:    db,
		Redis:    redisClient,
		Secret:   cfg.JWTSecret,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
	log.Info().Msg("server stopped")
}
