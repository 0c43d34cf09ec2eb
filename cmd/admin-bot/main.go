package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahdighaemi123/ActCastBot/internal/adminbot"
	"github.com/mahdighaemi123/ActCastBot/internal/broadcast"
	"github.com/mahdighaemi123/ActCastBot/internal/config"
	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/health"
	"github.com/mahdighaemi123/ActCastBot/internal/logger"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateAdmin(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(logger.Config{
		Level:     cfg.Logging.Level,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	log.Info().Msg("starting admin bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewDB(ctx, cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close(context.Background())

	users := storage.NewUserRepo(db)
	casts := storage.NewCastRepo(db)
	surveys := storage.NewSurveyRepo(db)
	batches := storage.NewBatchRepo(db)

	// Sweep batches interrupted by a previous crash before taking new work.
	if swept, err := batches.MarkStaleBatches(ctx, cfg.Broadcast.StaleAfter); err != nil {
		log.Error().Err(err).Msg("stale batch sweep failed")
	} else if swept > 0 {
		log.Warn().Int64("batches", swept).Msg("stale batches marked incomplete")
	}

	bot, err := gateway.NewBot(cfg.Bot.AdminToken, cfg.Bot.APIURL, cfg.Bot.PollTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	gw := gateway.NewTelegram(bot, cfg.Bot.StorageChannelID)

	engine := broadcast.NewEngine(gw, batches, broadcast.Config{
		SendInterval:   cfg.Broadcast.SendInterval,
		DeleteInterval: cfg.Broadcast.DeleteInterval,
		ProgressEvery:  cfg.Broadcast.ProgressEvery,
	}, log)

	panel := adminbot.New(adminbot.Deps{
		Bot:         bot,
		Gateway:     gw,
		Engine:      engine,
		Resolver:    broadcast.NewResolver(users),
		Users:       users,
		Casts:       casts,
		Surveys:     surveys,
		Batches:     batches,
		ArchiveChat: cfg.Bot.StorageChannelID,
		IsAdmin:     cfg.IsAdmin,
		Log:         log,
	})

	go func() {
		if err := health.Serve(ctx, cfg.Health.Addr, health.NewRouter(db, log), log); err != nil {
			log.Error().Err(err).Msg("health listener failed")
		}
	}()

	go panel.Start()
	log.Info().Msg("admin bot started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down admin bot")
	panel.Stop()
	cancel()
	log.Info().Msg("admin bot stopped")
}
