package broadcast

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCollector_AppendArchivesAndStoresLocator(t *testing.T) {
	gw := &mockGateway{}
	archived := 0
	gw.archiveFn = func(sourceChat int64, messageID int) (int, error) {
		archived++
		return 9000 + archived, nil
	}
	c := NewCollector(gw, -100500)

	n, err := c.Append(context.Background(), 42, 1)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Append() count = %d, want 1", n)
	}
	if _, err := c.Append(context.Background(), 42, 2); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	bundle, err := c.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(bundle) != 2 {
		t.Fatalf("bundle size = %d, want 2", len(bundle))
	}
	// The collector stores the archive locator, never the original.
	for i, ref := range bundle {
		if ref.ChatID != -100500 {
			t.Errorf("bundle[%d].ChatID = %d, want archive channel", i, ref.ChatID)
		}
		if ref.MessageID != 9001+i {
			t.Errorf("bundle[%d].MessageID = %d, want %d", i, ref.MessageID, 9001+i)
		}
	}
}

func TestCollector_FinalizeEmpty(t *testing.T) {
	c := NewCollector(&mockGateway{}, -1)

	_, err := c.Finalize()
	if !errors.Is(err, ErrEmptyBundle) {
		t.Errorf("Finalize() error = %v, want ErrEmptyBundle", err)
	}
}

func TestCollector_ArchiveFailureKeepsCount(t *testing.T) {
	gw := &mockGateway{}
	gw.archiveFn = func(int64, int) (int, error) {
		return 0, fmt.Errorf("bot is not an admin of the channel")
	}
	c := NewCollector(gw, -1)

	n, err := c.Append(context.Background(), 42, 1)
	if err == nil {
		t.Fatal("expected archive failure to propagate")
	}
	if n != 0 {
		t.Errorf("count after failed append = %d, want 0", n)
	}
}

func TestCollector_Cancel(t *testing.T) {
	gw := &mockGateway{}
	c := NewCollector(gw, -1)

	if _, err := c.Append(context.Background(), 42, 1); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	c.Cancel()

	if c.Count() != 0 {
		t.Errorf("count after cancel = %d, want 0", c.Count())
	}
	if _, err := c.Finalize(); !errors.Is(err, ErrEmptyBundle) {
		t.Errorf("Finalize() after cancel error = %v, want ErrEmptyBundle", err)
	}
}

func TestCollector_FinalizeReturnsCopy(t *testing.T) {
	gw := &mockGateway{}
	c := NewCollector(gw, -1)

	if _, err := c.Append(context.Background(), 42, 1); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	bundle, err := c.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	bundle[0].MessageID = 0
	again, _ := c.Finalize()
	if again[0].MessageID == 0 {
		t.Error("Finalize() must return a copy, not the internal slice")
	}
}

// End-to-end: collect a bundle, resolve the test cohort, fan out, undo.
func TestBroadcast_EndToEnd(t *testing.T) {
	gw := &mockGateway{}
	store := newMemStore()
	e := newTestEngine(gw, store)

	c := NewCollector(gw, -100500)
	for i := 1; i <= 2; i++ {
		if _, err := c.Append(context.Background(), 42, i); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	bundle, err := c.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	dir := &mockDirectory{testFn: func(string) ([]int64, error) {
		return []int64{101, 102, 103}, nil
	}}
	recipients, err := NewResolver(dir).Resolve(context.Background(), Selection{Mode: ModeCohort, Flag: "test_user"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	res, err := e.Send(context.Background(), recipients, bundle, nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	b := store.batches[res.BatchID]
	if b.TargetCount != 3 || b.Status != "completed" {
		t.Errorf("batch = %+v, want target 3 completed", b)
	}

	// Exactly sent_count recipients carry exactly 2 log rows each.
	perRecipient := map[int64]int{}
	for _, l := range store.logs {
		perRecipient[l.RecipientID]++
	}
	if len(perRecipient) != res.SentCount {
		t.Errorf("recipients with logs = %d, want %d", len(perRecipient), res.SentCount)
	}
	for id, n := range perRecipient {
		if n != 2 {
			t.Errorf("recipient %d has %d log rows, want 2", id, n)
		}
	}

	undo, err := e.Undo(context.Background(), res.BatchID, nil)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if undo.Total != 6 || undo.Deleted != 6 {
		t.Errorf("Undo() = %+v, want {6 6 0}", undo)
	}
}
