package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahdighaemi123/ActCastBot/internal/config"
	"github.com/mahdighaemi123/ActCastBot/internal/contentbot"
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
	if err := cfg.ValidateContent(); err != nil {
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
	log.Info().Msg("starting content bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewDB(ctx, cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close(context.Background())

	bot, err := gateway.NewBot(cfg.Bot.Token, cfg.Bot.APIURL, cfg.Bot.PollTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	users := storage.NewUserRepo(db)
	casts := storage.NewCastRepo(db)
	surveys := storage.NewSurveyRepo(db)

	content := contentbot.New(bot, users, casts, surveys, log)

	go func() {
		if err := health.Serve(ctx, cfg.Health.Addr, health.NewRouter(db, log), log); err != nil {
			log.Error().Err(err).Msg("health listener failed")
		}
	}()

	go content.Start()
	log.Info().Msg("content bot started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down content bot")
	content.Stop()
	cancel()
	log.Info().Msg("content bot stopped")
}
