package adminbot

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/report"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// recentBatchLimit caps the batch list shown in the panel.
const recentBatchLimit = 10

func (b *Bot) handleBatches(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()

	batches, err := b.batches.RecentBatches(ctx, recentBatchLimit)
	if err != nil {
		b.log.Error().Err(err).Msg("batch list failed")
		return c.Respond(&tele.CallbackResponse{Text: "Could not load the batch list."})
	}
	if err := c.Respond(); err != nil {
		return err
	}
	if len(batches) == 0 {
		return c.Edit("No broadcasts yet. Back to the menu:", mainMenu)
	}
	return c.Edit(batchListText(batches), batchListKeyboard(batches))
}

func batchListText(batches []storage.Batch) string {
	var sb strings.Builder
	sb.WriteString("📦 Recent broadcasts:\n\n")
	for _, batch := range batches {
		fmt.Fprintf(&sb, "%s · %s\n%s · 👥 %d · ✅ %d · ❌ %d\n\n",
			shortID(batch.BatchID),
			batch.CreatedAt.Format("2006-01-02 15:04"),
			batch.Status, batch.TargetCount, batch.SentCount, batch.FailedCount)
	}
	sb.WriteString("Tap a row below to undo that broadcast.")
	return sb.String()
}

func (b *Bot) handleStats(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()

	total, err := b.users.Count(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("user count failed")
		return c.Respond(&tele.CallbackResponse{Text: "Could not load the stats."})
	}
	rows, err := b.users.HistoryBreakdown(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("history breakdown failed")
		return c.Respond(&tele.CallbackResponse{Text: "Could not load the stats."})
	}
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit(report.StatsText(total, rows, time.Now()))
}
