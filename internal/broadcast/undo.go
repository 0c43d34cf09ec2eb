package broadcast

import (
	"context"
	"fmt"
)

// UndoResult is the tally an undo pass reports.
type UndoResult struct {
	Total   int
	Deleted int
	Errors  int
}

// ProgressFunc receives running undo counts so a caller can render live
// progress while a long deletion loop runs.
type ProgressFunc func(done, deleted, errorCount int)

// Undo deletes every message delivered by the batch from its recipients'
// chats, in delivery order. The log rows themselves are retained as an
// audit trail. A batch with no logs is a valid terminal state and yields
// a zero result. Individual deletion failures (already deleted by the
// user, too old to delete) are expected, counted and never escalated.
func (e *Engine) Undo(ctx context.Context, batchID string, progress ProgressFunc) (UndoResult, error) {
	logs, err := e.store.DeliveryLogs(ctx, batchID)
	if err != nil {
		return UndoResult{}, fmt.Errorf("fetch delivery logs: %w", err)
	}

	res := UndoResult{Total: len(logs)}
	if res.Total == 0 {
		return res, nil
	}

	e.log.Info().
		Str("batch_id", batchID).
		Int("total", res.Total).
		Msg("undo started")

	for i, entry := range logs {
		if err := e.gw.DeleteMessage(ctx, entry.RecipientID, entry.MessageID); err != nil {
			res.Errors++
			deletionsTotal.WithLabelValues("error").Inc()
		} else {
			res.Deleted++
			deletionsTotal.WithLabelValues("deleted").Inc()
		}

		done := i + 1
		if progress != nil && done%e.cfg.ProgressEvery == 0 && done < res.Total {
			progress(done, res.Deleted, res.Errors)
		}

		if done < res.Total {
			e.sleep(e.cfg.DeleteInterval)
		}
	}

	e.log.Info().
		Str("batch_id", batchID).
		Int("deleted", res.Deleted).
		Int("errors", res.Errors).
		Msg("undo completed")

	return res, nil
}
