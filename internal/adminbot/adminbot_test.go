package adminbot

import (
	"strings"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/broadcast"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

func TestParseDateWindow(t *testing.T) {
	start, end, err := parseDateWindow("2026-01-01 2026-01-31")
	if err != nil {
		t.Fatalf("parseDateWindow: %v", err)
	}
	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	wantEnd := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC).Unix()
	if start != wantStart {
		t.Errorf("start = %d, want %d", start, wantStart)
	}
	if end != wantEnd {
		t.Errorf("end = %d, want %d", end, wantEnd)
	}
}

func TestParseDateWindow_SingleDay(t *testing.T) {
	start, end, err := parseDateWindow("2026-03-15 2026-03-15")
	if err != nil {
		t.Fatalf("parseDateWindow: %v", err)
	}
	if end <= start {
		t.Errorf("single-day window should span the whole day: start %d end %d", start, end)
	}
	if end-start != 24*60*60-1 {
		t.Errorf("window length = %d seconds", end-start)
	}
}

func TestParseDateWindow_Rejects(t *testing.T) {
	cases := []string{
		"",
		"2026-01-01",
		"2026-01-01 2026-01-02 2026-01-03",
		"not-a-date 2026-01-02",
		"2026-01-02 2026-01-01", // reversed
	}
	for _, in := range cases {
		if _, _, err := parseDateWindow(in); err == nil {
			t.Errorf("parseDateWindow(%q) should fail", in)
		}
	}
}

func TestWindowOf(t *testing.T) {
	sel := broadcast.Selection{Mode: broadcast.ModeRange, Start: 10, End: 20}
	w := windowOf(sel)
	if w == nil || w.Start != 10 || w.End != 20 {
		t.Errorf("windowOf(range) = %+v", w)
	}
	if windowOf(broadcast.Selection{Mode: broadcast.ModeAll}) != nil {
		t.Error("non-range selection should carry no window")
	}
}

func TestSplitOptionLine(t *testing.T) {
	cases := []struct {
		in        string
		wantText  string
		wantReply string
	}{
		{"Yes | Great choice!", "Yes", "Great choice!"},
		{"No", "No", defaultVoteReply},
		{"Maybe |", "Maybe", defaultVoteReply},
		{"  Spaced  |  reply  ", "Spaced", "reply"},
		{"", "", defaultVoteReply},
	}
	for _, tc := range cases {
		text, reply := splitOptionLine(tc.in)
		if text != tc.wantText || reply != tc.wantReply {
			t.Errorf("splitOptionLine(%q) = (%q, %q), want (%q, %q)",
				tc.in, text, reply, tc.wantText, tc.wantReply)
		}
	}
}

func TestSessions(t *testing.T) {
	sessions := NewSessions()

	sess := sessions.Get(1)
	if sess.State != StateIdle {
		t.Errorf("fresh session state = %q, want idle", sess.State)
	}

	sess.State = StateCollecting
	if again := sessions.Get(1); again.State != StateCollecting {
		t.Errorf("session not persisted: state = %q", again.State)
	}
	if other := sessions.Get(2); other.State != StateIdle {
		t.Errorf("sessions leaked across operators: state = %q", other.State)
	}

	sessions.Reset(1)
	if reset := sessions.Get(1); reset.State != StateIdle {
		t.Errorf("reset session state = %q, want idle", reset.State)
	}
}

func TestVoteKeyboard(t *testing.T) {
	s := &storage.Survey{
		SurveyID: "sid",
		Options: []storage.SurveyOption{
			{OptionID: "a", Text: "Yes"},
			{OptionID: "b", Text: "No"},
		},
	}

	menu := voteKeyboard(s)

	if len(menu.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(menu.InlineKeyboard))
	}
	first := menu.InlineKeyboard[0][0]
	if first.Text != "Yes" {
		t.Errorf("first button text = %q", first.Text)
	}
	if first.Data != "surv:sid:a" {
		t.Errorf("first button data = %q", first.Data)
	}
}

func TestBatchListText(t *testing.T) {
	batches := []storage.Batch{
		{
			BatchID:     "aaaabbbb-cccc-dddd-eeee-ffff00001111",
			CreatedAt:   time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
			Status:      storage.BatchStatusCompleted,
			TargetCount: 100,
			SentCount:   97,
			FailedCount: 3,
		},
	}

	got := batchListText(batches)

	for _, want := range []string{"aaaabbbb", "completed", "👥 100", "✅ 97", "❌ 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("batchListText missing %q in:\n%s", want, got)
		}
	}
}

func TestUndoFinalText(t *testing.T) {
	batchID := "aaaabbbb-cccc-dddd-eeee-ffff00001111"

	got := undoFinalText(batchID, broadcast.UndoResult{Total: 5, Deleted: 4, Errors: 1})
	for _, want := range []string{"aaaabbbb", "Deleted: 4 of 5", "Errors: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("undoFinalText missing %q in:\n%s", want, got)
		}
	}

	empty := undoFinalText(batchID, broadcast.UndoResult{})
	if !strings.Contains(empty, "no delivered messages to undo") {
		t.Errorf("empty batch should report nothing to undo, got:\n%s", empty)
	}
	if strings.Contains(empty, "0 of 0") {
		t.Errorf("empty batch should not render a zero tally:\n%s", empty)
	}
}

func TestGlobalLock_Serializes(t *testing.T) {
	mw := GlobalLock()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
	)
	handler := mw(func(c tele.Context) error {
		mu.Lock()
		running++
		if running > maxSeen {
			maxSeen = running
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = handler(nil)
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent handlers = %d, want 1", maxSeen)
	}
}
