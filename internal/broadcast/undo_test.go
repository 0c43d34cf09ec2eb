package broadcast

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

func seedLogs(store *memStore, batchID string, n int) {
	for i := 0; i < n; i++ {
		store.logs = append(store.logs, storage.DeliveryLog{
			BatchID:     batchID,
			RecipientID: int64(i + 1),
			MessageID:   500 + i,
		})
	}
}

func TestUndo_EmptyBatch(t *testing.T) {
	gw := &mockGateway{}
	store := newMemStore()
	e := newTestEngine(gw, store)

	res, err := e.Undo(context.Background(), "missing-batch", nil)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Total != 0 || res.Deleted != 0 || res.Errors != 0 {
		t.Errorf("Undo() = %+v, want zero result", res)
	}
	if len(gw.deletions) != 0 {
		t.Error("expected no gateway calls for an empty batch")
	}
}

func TestUndo_DeletesInStoredOrder(t *testing.T) {
	gw := &mockGateway{}
	store := newMemStore()
	seedLogs(store, "batch-1", 3)
	e := newTestEngine(gw, store)

	res, err := e.Undo(context.Background(), "batch-1", nil)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Total != 3 || res.Deleted != 3 || res.Errors != 0 {
		t.Errorf("Undo() = %+v, want {3 3 0}", res)
	}

	for i, d := range gw.deletions {
		if d.messageID != 500+i {
			t.Errorf("deletions[%d].messageID = %d, want %d", i, d.messageID, 500+i)
		}
	}
}

func TestUndo_CountsFailedDeletions(t *testing.T) {
	gw := &mockGateway{}
	gw.deleteFn = func(_ int64, messageID int) error {
		// Exactly the third entry fails.
		if messageID == 502 {
			return fmt.Errorf("message can't be deleted")
		}
		return nil
	}
	store := newMemStore()
	seedLogs(store, "batch-1", 5)
	e := newTestEngine(gw, store)

	res, err := e.Undo(context.Background(), "batch-1", nil)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Total != 5 || res.Deleted != 4 || res.Errors != 1 {
		t.Errorf("Undo() = %+v, want {5 4 1}", res)
	}
}

func TestUndo_ProgressReporting(t *testing.T) {
	gw := &mockGateway{}
	store := newMemStore()
	seedLogs(store, "batch-1", 250)

	e := NewEngine(gw, store, Config{ProgressEvery: 100}, zerolog.Nop())
	e.sleep = func(time.Duration) {}

	var calls []int
	res, err := e.Undo(context.Background(), "batch-1", func(done, deleted, errorCount int) {
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if res.Deleted != 250 {
		t.Errorf("deleted = %d, want 250", res.Deleted)
	}

	// Fires at 100 and 200; the final tally comes from the return value.
	want := []int{100, 200}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d = %d, want %d", i, calls[i], want[i])
		}
	}
}

func TestUndo_KeepsLogRows(t *testing.T) {
	gw := &mockGateway{}
	store := newMemStore()
	seedLogs(store, "batch-1", 4)
	e := newTestEngine(gw, store)

	if _, err := e.Undo(context.Background(), "batch-1", nil); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}

	// The audit trail survives the undo.
	logs, _ := store.DeliveryLogs(context.Background(), "batch-1")
	if len(logs) != 4 {
		t.Errorf("log rows after undo = %d, want 4", len(logs))
	}
}
