package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

type memHistoryStore struct {
	users  []storage.User
	setErr error
}

func (m *memHistoryStore) All(_ context.Context) ([]storage.User, error) {
	return m.users, nil
}

func (m *memHistoryStore) SetHistory(_ context.Context, userID int64, entries []storage.HistoryEntry) error {
	if m.setErr != nil {
		return m.setErr
	}
	for i := range m.users {
		if m.users[i].UserID == userID {
			m.users[i].History = entries
			return nil
		}
	}
	return storage.ErrNotFound
}

func history(values ...string) []storage.HistoryEntry {
	entries := make([]storage.HistoryEntry, len(values))
	for i, v := range values {
		entries[i] = storage.HistoryEntry{Value: v}
	}
	return entries
}

func TestDedupEntries(t *testing.T) {
	cases := []struct {
		name    string
		in      []string
		want    []string
		changed bool
	}{
		{"no duplicates", []string{"a", "b", "c"}, []string{"a", "b", "c"}, false},
		{"keeps first occurrence", []string{"a", "b", "a", "c", "b"}, []string{"a", "b", "c"}, true},
		{"all same", []string{"a", "a", "a"}, []string{"a"}, true},
		{"empty", nil, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := DedupEntries(history(tc.in...))
			if changed != tc.changed {
				t.Errorf("changed = %v, want %v", changed, tc.changed)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tc.want))
			}
			for i, v := range tc.want {
				if got[i].Value != v {
					t.Errorf("entry %d = %q, want %q", i, got[i].Value, v)
				}
			}
		})
	}
}

func TestDedupHistory(t *testing.T) {
	store := &memHistoryStore{users: []storage.User{
		{UserID: 1, History: history("start", "cast:a", "start")},
		{UserID: 2, History: history("start", "cast:b")},
		{UserID: 3},
	}}

	res, err := DedupHistory(context.Background(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("DedupHistory: %v", err)
	}
	if res.Processed != 3 {
		t.Errorf("Processed = %d, want 3", res.Processed)
	}
	if res.Updated != 1 {
		t.Errorf("Updated = %d, want 1", res.Updated)
	}
	if len(store.users[0].History) != 2 {
		t.Errorf("user 1 history = %v, want deduped to 2 entries", store.users[0].History)
	}
	if len(store.users[1].History) != 2 {
		t.Errorf("user 2 history touched: %v", store.users[1].History)
	}
}

func TestDedupHistory_Idempotent(t *testing.T) {
	store := &memHistoryStore{users: []storage.User{
		{UserID: 1, History: history("a", "a", "b")},
	}}

	if _, err := DedupHistory(context.Background(), store, zerolog.Nop()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := DedupHistory(context.Background(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Updated != 0 {
		t.Errorf("second run Updated = %d, want 0", res.Updated)
	}
}

func TestDedupHistory_UpdateFailureStops(t *testing.T) {
	boom := errors.New("write failed")
	store := &memHistoryStore{
		users:  []storage.User{{UserID: 1, History: history("a", "a")}},
		setErr: boom,
	}

	_, err := DedupHistory(context.Background(), store, zerolog.Nop())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}
