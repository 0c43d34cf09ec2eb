package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// BatchStore is the persistence façade the engine writes through.
// *storage.BatchRepo satisfies it.
type BatchStore interface {
	CreateBatch(ctx context.Context, b *storage.Batch) error
	CompleteBatch(ctx context.Context, batchID string, sent, failed int) error
	AppendDeliveryLog(ctx context.Context, batchID string, recipientID int64, messageID int) error
	DeliveryLogs(ctx context.Context, batchID string) ([]storage.DeliveryLog, error)
}

// Config holds the pacing knobs for fan-out and undo loops.
type Config struct {
	// SendInterval is the minimum wall-clock interval per send; when a
	// gateway call returns faster, the engine sleeps the remainder to
	// stay under the provider's flood limits.
	SendInterval time.Duration
	// DeleteInterval is the fixed pacing between undo deletions.
	DeleteInterval time.Duration
	// ProgressEvery controls how often the undo progress sink fires.
	ProgressEvery int
}

// BatchResult is the tally a completed fan-out reports.
type BatchResult struct {
	BatchID     string
	SentCount   int
	FailedCount int
}

// Engine replays a message bundle to every recipient in a resolved list,
// one send at a time, recording a delivery log per delivered message.
// Gateway-level failures are counted per recipient and never propagated;
// only persistence failures abort a running batch.
type Engine struct {
	gw    gateway.Gateway
	store BatchStore
	cfg   Config
	log   zerolog.Logger

	sleep func(time.Duration)
	now   func() time.Time
}

// NewEngine creates an Engine. Zero config fields fall back to the
// provider-safe defaults (50ms send, 35ms delete, progress every 100).
func NewEngine(gw gateway.Gateway, store BatchStore, cfg Config, log zerolog.Logger) *Engine {
	if cfg.SendInterval <= 0 {
		cfg.SendInterval = 50 * time.Millisecond
	}
	if cfg.DeleteInterval <= 0 {
		cfg.DeleteInterval = 35 * time.Millisecond
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	return &Engine{
		gw:    gw,
		store: store,
		cfg:   cfg,
		log:   log,
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Send fans the bundle out to every recipient in list order. The window
// is recorded on the batch for reporting and may be nil.
//
// A recipient counts as sent only when every bundle item reached them;
// the first failed replay marks the whole recipient failed and moves on.
// There are no retries. The batch always completes with a tally unless a
// precondition fails or the store becomes unreachable mid-loop.
func (e *Engine) Send(ctx context.Context, recipients []int64, bundle []storage.MessageRef, window *storage.Window) (BatchResult, error) {
	if len(recipients) == 0 {
		return BatchResult{}, ErrNoRecipients
	}
	if len(bundle) == 0 {
		return BatchResult{}, ErrEmptyBundle
	}

	batchID := uuid.New().String()
	batch := &storage.Batch{
		BatchID:     batchID,
		CreatedAt:   e.now(),
		Window:      window,
		TargetCount: len(recipients),
		Bundle:      bundle,
		Status:      storage.BatchStatusProcessing,
	}
	if err := e.store.CreateBatch(ctx, batch); err != nil {
		return BatchResult{}, fmt.Errorf("create batch: %w", err)
	}

	batchesStartedTotal.Inc()
	started := e.now()

	e.log.Info().
		Str("batch_id", batchID).
		Int("recipients", len(recipients)).
		Int("bundle_size", len(bundle)).
		Msg("fan-out started")

	sent, failed := 0, 0
	for _, recipient := range recipients {
		ok, err := e.sendToRecipient(ctx, batchID, recipient, bundle)
		if err != nil {
			// Store unreachable: abort, the batch stays processing until
			// the staleness sweep picks it up.
			return BatchResult{}, err
		}
		if ok {
			sent++
			recipientsTotal.WithLabelValues("sent").Inc()
		} else {
			failed++
			recipientsTotal.WithLabelValues("failed").Inc()
		}
	}

	if err := e.store.CompleteBatch(ctx, batchID, sent, failed); err != nil {
		return BatchResult{}, fmt.Errorf("complete batch: %w", err)
	}

	batchDuration.Observe(e.now().Sub(started).Seconds())

	e.log.Info().
		Str("batch_id", batchID).
		Int("sent", sent).
		Int("failed", failed).
		Msg("fan-out completed")

	return BatchResult{BatchID: batchID, SentCount: sent, FailedCount: failed}, nil
}

// sendToRecipient replays the whole bundle to one recipient. It returns
// false when a gateway call failed (recipient counted as failed) and an
// error only when the delivery log could not be written.
func (e *Engine) sendToRecipient(ctx context.Context, batchID string, recipient int64, bundle []storage.MessageRef) (bool, error) {
	for _, ref := range bundle {
		start := e.now()

		deliveredID, err := e.gw.Replay(ctx, recipient, ref.ChatID, ref.MessageID)
		if err != nil {
			// Blocked bot, deactivated account, flood limit: expected,
			// counted, never retried.
			e.log.Debug().
				Err(err).
				Str("batch_id", batchID).
				Int64("recipient", recipient).
				Msg("replay failed, skipping recipient")
			return false, nil
		}

		if err := e.store.AppendDeliveryLog(ctx, batchID, recipient, deliveredID); err != nil {
			return false, fmt.Errorf("append delivery log: %w", err)
		}

		if remaining := e.cfg.SendInterval - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
	return true, nil
}
