package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahdighaemi123/ActCastBot/internal/config"
	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/health"
	"github.com/mahdighaemi123/ActCastBot/internal/logger"
	"github.com/mahdighaemi123/ActCastBot/internal/report"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateReport(); err != nil {
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
	log.Info().Msg("starting report service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewDB(ctx, cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close(context.Background())

	// The bot is used purely for publishing; the poller never starts.
	bot, err := gateway.NewBot(cfg.Bot.AdminToken, cfg.Bot.APIURL, cfg.Bot.PollTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	gw := gateway.NewTelegram(bot, cfg.Bot.StorageChannelID)

	svc := report.NewService(
		storage.NewUserRepo(db), storage.NewSurveyRepo(db), gw,
		cfg.Report.ChannelID, cfg.Report.Interval, cfg.Report.Timezone, log)

	go func() {
		if err := health.Serve(ctx, cfg.Health.Addr, health.NewRouter(db, log), log); err != nil {
			log.Error().Err(err).Msg("health listener failed")
		}
	}()

	go func() {
		if err := svc.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("report service stopped")
		}
	}()
	log.Info().Dur("interval", cfg.Report.Interval).Msg("report service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down report service")
	cancel()
	log.Info().Msg("report service stopped")
}
