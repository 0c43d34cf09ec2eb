package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahdighaemi123/ActCastBot/internal/backup"
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
	if err := cfg.ValidateBackup(); err != nil {
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
	log.Info().Msg("starting backup service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewDB(ctx, cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close(context.Background())

	// The bot is used purely for uploads; the poller never starts.
	bot, err := gateway.NewBot(cfg.Bot.AdminToken, cfg.Bot.APIURL, cfg.Bot.PollTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	gw := gateway.NewTelegram(bot, cfg.Bot.StorageChannelID)

	exporter := backup.NewExporter(
		storage.NewUserRepo(db), gw,
		cfg.Backup.ChannelID, cfg.Backup.Interval, cfg.Backup.Dir, log)

	go func() {
		if err := health.Serve(ctx, cfg.Health.Addr, health.NewRouter(db, log), log); err != nil {
			log.Error().Err(err).Msg("health listener failed")
		}
	}()

	go func() {
		if err := exporter.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("exporter stopped")
		}
	}()
	log.Info().Dur("interval", cfg.Backup.Interval).Msg("backup service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down backup service")
	cancel()
	log.Info().Msg("backup service stopped")
}
