// Package migrate holds one-shot data maintenance jobs.
package migrate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// HistoryStore is the slice of the user repository the dedup job needs.
type HistoryStore interface {
	All(ctx context.Context) ([]storage.User, error)
	SetHistory(ctx context.Context, userID int64, entries []storage.HistoryEntry) error
}

// DedupResult summarizes one dedup run.
type DedupResult struct {
	Processed int
	Updated   int
}

// progressEvery controls how often the dedup job logs progress.
const progressEvery = 100

// DedupHistory removes duplicate history values per user, keeping the
// first occurrence of each value. Users whose history is already
// unique are left untouched, so re-running the job is a no-op.
func DedupHistory(ctx context.Context, store HistoryStore, log zerolog.Logger) (DedupResult, error) {
	users, err := store.All(ctx)
	if err != nil {
		return DedupResult{}, fmt.Errorf("load users: %w", err)
	}

	var res DedupResult
	for i := range users {
		u := &users[i]
		res.Processed++

		deduped, changed := DedupEntries(u.History)
		if changed {
			if err := store.SetHistory(ctx, u.UserID, deduped); err != nil {
				return res, fmt.Errorf("update user %d: %w", u.UserID, err)
			}
			res.Updated++
		}

		if res.Processed%progressEvery == 0 {
			log.Info().
				Int("processed", res.Processed).
				Int("updated", res.Updated).
				Msg("dedup progress")
		}
	}

	log.Info().
		Int("processed", res.Processed).
		Int("updated", res.Updated).
		Msg("dedup finished")
	return res, nil
}

// DedupEntries returns the history with later duplicates of each value
// dropped. changed reports whether anything was removed.
func DedupEntries(entries []storage.HistoryEntry) ([]storage.HistoryEntry, bool) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]storage.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Value]; dup {
			continue
		}
		seen[e.Value] = struct{}{}
		out = append(out, e)
	}
	return out, len(out) != len(entries)
}
