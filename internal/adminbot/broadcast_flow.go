package adminbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/broadcast"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// windowLayout is the date format operators send range windows in.
const windowLayout = "2006-01-02"

func (b *Bot) handleNewBroadcast(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Who should receive this broadcast?", audienceMenu)
}

func (b *Bot) handleAudienceAll(c tele.Context) error {
	return b.resolveAudience(c, broadcast.Selection{Mode: broadcast.ModeAll})
}

func (b *Bot) handleAudienceCohort(c tele.Context) error {
	return b.resolveAudience(c, broadcast.Selection{
		Mode: broadcast.ModeCohort,
		Flag: "test_user",
	})
}

func (b *Bot) handleAudienceRange(c tele.Context) error {
	sess := b.sessions.Get(c.Sender().ID)
	sess.State = StateAwaitRange
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Send the registration window as two dates:\n`2026-01-01 2026-01-31`")
}

func (b *Bot) handleAudienceManual(c tele.Context) error {
	sess := b.sessions.Get(c.Sender().ID)
	sess.State = StateAwaitManual
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Send the user ids, separated by spaces, commas or newlines.")
}

func (b *Bot) handleRangeInput(c tele.Context, sess *Session) error {
	start, end, err := parseDateWindow(c.Text())
	if err != nil {
		return c.Send("Could not read that window. Send two dates like:\n`2026-01-01 2026-01-31`")
	}
	sess.Selection = broadcast.Selection{Mode: broadcast.ModeRange, Start: start, End: end}
	return b.finishAudience(c, sess)
}

func (b *Bot) handleManualInput(c tele.Context, sess *Session) error {
	sess.Selection = broadcast.Selection{Mode: broadcast.ModeManual, Raw: c.Text()}
	if err := b.finishAudience(c, sess); err != nil {
		if errors.Is(err, broadcast.ErrNoValidIDs) {
			return c.Send("No usable ids in that message. Send numeric ids separated by spaces, commas or newlines.")
		}
		return err
	}
	return nil
}

// resolveAudience handles the one-tap audience choices.
func (b *Bot) resolveAudience(c tele.Context, sel broadcast.Selection) error {
	sess := b.sessions.Get(c.Sender().ID)
	sess.Selection = sel
	if err := c.Respond(); err != nil {
		return err
	}
	return b.finishAudience(c, sess)
}

// finishAudience resolves the recipient list and advances the session:
// straight to confirmation when a bundle is already staged (survey
// flow), otherwise into collection.
func (b *Bot) finishAudience(c tele.Context, sess *Session) error {
	ctx, cancel := b.ctx()
	defer cancel()

	recipients, err := b.resolver.Resolve(ctx, sess.Selection)
	if err != nil {
		if errors.Is(err, broadcast.ErrNoValidIDs) {
			return err
		}
		b.log.Error().Err(err).Msg("audience resolve failed")
		return c.Send("Could not resolve the audience, please try again.")
	}
	if len(recipients) == 0 {
		b.sessions.Reset(c.Sender().ID)
		return c.Send("That audience is empty. Back to the menu:", mainMenu)
	}
	sess.Recipients = recipients

	if len(sess.Bundle) > 0 {
		sess.State = StateConfirm
		return c.Send(b.confirmText(sess), confirmMenu)
	}

	sess.State = StateCollecting
	sess.Collector = broadcast.NewCollector(b.gw, b.archiveChat)
	return c.Send(fmt.Sprintf(
		"Audience: %d recipients.\nNow send me the messages to broadcast, in order. Press Done when finished.",
		len(recipients)), collectMenu)
}

func (b *Bot) handleCollectItem(c tele.Context, sess *Session) error {
	ctx, cancel := b.ctx()
	defer cancel()

	msg := c.Message()
	n, err := sess.Collector.Append(ctx, msg.Chat.ID, msg.ID)
	if err != nil {
		b.log.Error().Err(err).Msg("bundle archive failed")
		return c.Send("Could not archive that message, try sending it again.")
	}
	return c.Send(fmt.Sprintf("Added (%d in the bundle). Send more or press Done.", n), collectMenu)
}

func (b *Bot) handleCollectDone(c tele.Context) error {
	sess := b.sessions.Get(c.Sender().ID)
	if sess.State != StateCollecting || sess.Collector == nil {
		return c.Respond()
	}

	bundle, err := sess.Collector.Finalize()
	if err != nil {
		if err := c.Respond(&tele.CallbackResponse{Text: "The bundle is empty."}); err != nil {
			return err
		}
		return c.Send("Send at least one message first, then press Done.", collectMenu)
	}

	sess.Bundle = bundle
	sess.State = StateConfirm
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit(b.confirmText(sess), confirmMenu)
}

func (b *Bot) confirmText(sess *Session) string {
	return fmt.Sprintf(
		"Ready to send.\n👥 Recipients: %d\n✉️ Messages: %d\n\nThis runs paced, roughly %d per minute.",
		len(sess.Recipients), len(sess.Bundle), sendsPerMinute)
}

// sendsPerMinute is informational only; the engine owns the pacing.
const sendsPerMinute = 60 * 1000 / 50

func (b *Bot) handleConfirmSend(c tele.Context) error {
	operator := c.Sender().ID
	sess := b.sessions.Get(operator)
	if sess.State != StateConfirm {
		return c.Respond()
	}

	recipients, bundle := sess.Recipients, sess.Bundle
	window := windowOf(sess.Selection)
	b.sessions.Reset(operator)

	if err := c.Respond(); err != nil {
		return err
	}
	if err := c.Edit(fmt.Sprintf("🚀 Broadcast started: %d recipients.", len(recipients))); err != nil {
		return err
	}

	// The fan-out outlives the update; it must not hold the global lock.
	go b.runSend(operator, recipients, bundle, window)
	return nil
}

func (b *Bot) runSend(operator int64, recipients []int64, bundle []storage.MessageRef, window *storage.Window) {
	res, err := b.engine.Send(context.Background(), recipients, bundle, window)
	if err != nil {
		b.log.Error().Err(err).Msg("fan-out failed")
		b.notify(operator, fmt.Sprintf("❌ Broadcast failed: %v", err), nil)
		return
	}
	b.notify(operator, fmt.Sprintf(
		"✅ Broadcast %s finished.\nSent: %d\nFailed: %d",
		shortID(res.BatchID), res.SentCount, res.FailedCount),
		undoKeyboard(res.BatchID))
}

func (b *Bot) handleUndoBatch(c tele.Context) error {
	batchID := strings.TrimSpace(c.Data())
	if batchID == "" {
		return c.Respond()
	}
	operator := c.Sender().ID
	if err := c.Respond(&tele.CallbackResponse{Text: "Undo started."}); err != nil {
		return err
	}

	status, err := b.bot.Send(tele.ChatID(operator), fmt.Sprintf("↩️ Undoing broadcast %s…", shortID(batchID)))
	if err != nil {
		return err
	}

	// Deletion loops run long; keep them off the global lock.
	go b.runUndo(operator, batchID, status)
	return nil
}

func (b *Bot) runUndo(operator int64, batchID string, status *tele.Message) {
	progress := func(done, deleted, errorCount int) {
		text := fmt.Sprintf("↩️ Undoing %s: %d done (%d deleted, %d errors)…",
			shortID(batchID), done, deleted, errorCount)
		if _, err := b.bot.Edit(status, text); err != nil {
			b.log.Debug().Err(err).Msg("progress edit failed")
		}
	}

	res, err := b.engine.Undo(context.Background(), batchID, progress)
	if err != nil {
		b.log.Error().Str("batch_id", batchID).Err(err).Msg("undo failed")
		if _, err := b.bot.Edit(status, fmt.Sprintf("❌ Undo failed: %v", err)); err != nil {
			b.log.Debug().Err(err).Msg("status edit failed")
		}
		return
	}

	if _, err := b.bot.Edit(status, undoFinalText(batchID, res)); err != nil {
		b.log.Debug().Err(err).Msg("status edit failed")
	}
}

// undoFinalText renders the terminal undo message. A batch with no
// delivery logs is a valid terminal state, reported as such rather
// than as a zero tally.
func undoFinalText(batchID string, res broadcast.UndoResult) string {
	if res.Total == 0 {
		return fmt.Sprintf("ℹ️ Broadcast %s has no delivered messages to undo.", shortID(batchID))
	}
	return fmt.Sprintf("✅ Undo of %s finished.\nDeleted: %d of %d\nErrors: %d",
		shortID(batchID), res.Deleted, res.Total, res.Errors)
}

// notify best-effort messages the operator from a background goroutine.
func (b *Bot) notify(operator int64, text string, menu *tele.ReplyMarkup) {
	var err error
	if menu != nil {
		_, err = b.bot.Send(tele.ChatID(operator), text, menu)
	} else {
		_, err = b.bot.Send(tele.ChatID(operator), text)
	}
	if err != nil {
		b.log.Warn().Int64("operator", operator).Err(err).Msg("operator notify failed")
	}
}

// parseDateWindow reads two dates and returns an inclusive Unix-second
// window spanning from the start of the first day to the end of the
// second.
func parseDateWindow(text string) (start, end int64, err error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two dates, got %d fields", len(fields))
	}
	from, err := time.Parse(windowLayout, fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse start date: %w", err)
	}
	to, err := time.Parse(windowLayout, fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse end date: %w", err)
	}
	if to.Before(from) {
		return 0, 0, fmt.Errorf("end date before start date")
	}
	return from.Unix(), to.Add(24*time.Hour - time.Second).Unix(), nil
}

// windowOf records the range bounds on the batch; other modes have none.
func windowOf(sel broadcast.Selection) *storage.Window {
	if sel.Mode != broadcast.ModeRange {
		return nil
	}
	return &storage.Window{Start: sel.Start, End: sel.End}
}
