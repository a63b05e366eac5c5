package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gamevault/chat-service/internal/api"
	"github.com/gamevault/chat-service/internal/cache"
	"github.com/gamevault/chat-service/internal/config"
	"github.com/gamevault/chat-service/internal/events"
	"github.com/gamevault/chat-service/internal/kafka"
	"github.com/gamevault/chat-service/internal/repository"
	"github.com/gamevault/chat-service/internal/service"
	"github.com/gamevault/chat-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.App.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	mongoClient, err := repository.NewMongoClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	db := mongoClient.Database(cfg.Mongo.DB)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	redisClient, err := cache.NewRedis(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	lifecycle, err := events.NewLifecyclePublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect nats")
	}
	defer lifecycle.Close()

	producer := kafka.NewProducer(cfg)
	defer producer.Close()
	consumer := kafka.NewConsumer(cfg)
	defer consumer.Close()

	convRepo := repository.NewConversationRepository(mongoClient, db)
	msgRepo := repository.NewMessageRepository(db)
	users := repository.NewUserDirectory(db)
	friends := repository.NewFriendshipDirectory(db)
	msgCache := cache.NewRedisMessageCache(redisClient, cfg.Cache.WindowSize, cfg.Cache.TTL())

	hub := ws.NewHub()
	broadcaster := events.NewBroadcaster(hub, producer)

	convSvc := service.NewConversationService(convRepo, users, lifecycle)
	msgSvc := service.NewMessagingService(convSvc, msgRepo, msgCache, users, friends, broadcaster)

	wsSrv := ws.NewServer(hub, convSvc)
	handler := api.NewHandler(convSvc, msgSvc)
	app := api.NewServer(cfg, handler, wsSrv)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go consumer.Run(runCtx, hub)

	go func() {
		log.Info().Str("port", cfg.App.PortString()).Msg("chat-service listening")
		if err := app.Listen(":" + cfg.App.PortString()); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-runCtx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout())
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
