// fix-history is a one-shot maintenance job that removes duplicate
// history values per user, keeping the first occurrence of each.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mahdighaemi123/ActCastBot/internal/config"
	"github.com/mahdighaemi123/ActCastBot/internal/logger"
	"github.com/mahdighaemi123/ActCastBot/internal/migrate"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info().Msg("starting history dedup")

	ctx := context.Background()
	db, err := storage.NewDB(ctx, cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close(context.Background())

	res, err := migrate.DedupHistory(ctx, storage.NewUserRepo(db), log)
	if err != nil {
		log.Fatal().Err(err).Msg("history dedup failed")
	}

	log.Info().
		Int("processed", res.Processed).
		Int("updated", res.Updated).
		Msg("history dedup done")
}
