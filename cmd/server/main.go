package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/roomsync/reservation-system/internal/api"
	"github.com/roomsync/reservation-system/internal/core/event"
	"github.com/roomsync/reservation-system/internal/infrastructure/config"
	mongodb "github.com/roomsync/reservation-system/internal/infrastructure/db/mongo"
	redisdb "github.com/roomsync/reservation-system/internal/infrastructure/db/redis"
	"github.com/roomsync/reservation-system/internal/infrastructure/mail"
	"github.com/roomsync/reservation-system/internal/infrastructure/queue"
	"github.com/roomsync/reservation-system/pkg/logger"
)

func main() {
	rootCtx := context.Background()

	cfg, err := config.Load(rootCtx)
	if err != nil {
		panic("config: " + err.Error())
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(rootCtx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(rootCtx) }()

	if err := mongodb.EnsureIndexes(rootCtx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(rootCtx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// Event delivery runs until shutdown.
	workerCtx, stopWorkers := context.WithCancel(rootCtx)
	defer stopWorkers()

	invoker := queue.NewAsyncInvoker(0, log)
	invoker.Start(workerCtx)

	dispatcher := event.NewDispatcher(log, event.WithInvoker(invoker))
	mailer := mail.NewLogMailer(log)
	event.RegisterDefaultHandlers(dispatcher, mailer, log)

	e := api.NewRouter(api.Deps{
		Config:     cfg,
		Mongo:      db,
		Redis:      rdb,
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Log:        log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	shutdownCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("graceful shutdown completed")
	}
}
