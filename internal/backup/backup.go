// Package backup periodically exports the full user registry to CSV
// and uploads it to the operator backup channel.
package backup

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// exportHeader is the column layout of the user export.
var exportHeader = []string{
	"user_id", "first_name", "last_name", "username",
	"phone", "created_at", "test_user", "history",
}

// Exporter periodically snapshots the user registry.
type Exporter struct {
	users    *storage.UserRepo
	gw       gateway.Gateway
	channel  int64
	interval time.Duration
	dir      string
	log      zerolog.Logger
}

// NewExporter builds a backup exporter. dir is where export files are
// staged; empty means the OS temp directory.
func NewExporter(users *storage.UserRepo, gw gateway.Gateway, channel int64, interval time.Duration, dir string, log zerolog.Logger) *Exporter {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Exporter{
		users:    users,
		gw:       gw,
		channel:  channel,
		interval: interval,
		dir:      dir,
		log:      log,
	}
}

// Run exports once immediately and then on every interval tick until
// the context is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if err := e.Export(ctx); err != nil {
			e.log.Error().Err(err).Msg("backup export failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Export snapshots all users to a CSV file, uploads it to the backup
// channel and removes the local file.
func (e *Exporter) Export(ctx context.Context) error {
	users, err := e.users.All(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	now := time.Now()
	path := filepath.Join(e.dir, fmt.Sprintf("users_%s.csv", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(path)

	if err := WriteUsersCSV(f, users); err != nil {
		f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}

	caption := fmt.Sprintf("💾 User backup — %d users — %s", len(users), now.Format("2006-01-02 15:04"))
	if err := e.gw.SendDocument(ctx, e.channel, path, caption); err != nil {
		return fmt.Errorf("send export: %w", err)
	}

	e.log.Info().Int("users", len(users)).Str("file", filepath.Base(path)).Msg("backup uploaded")
	return nil
}

// WriteUsersCSV writes one row per user, with phones normalized and
// history flattened to a pipe-separated list.
func WriteUsersCSV(w io.Writer, users []storage.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range users {
		if err := cw.Write(userRow(&users[i])); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func userRow(u *storage.User) []string {
	return []string{
		strconv.FormatInt(u.UserID, 10),
		u.FirstName,
		u.LastName,
		u.Username,
		NormalizePhone(u.Phone),
		time.Unix(u.CreatedAt, 0).UTC().Format(time.RFC3339),
		strconv.FormatBool(u.TestUser),
		FlattenHistory(u.History),
	}
}

// FlattenHistory joins history values with a pipe so the whole trail
// fits a single CSV cell.
func FlattenHistory(entries []storage.HistoryEntry) string {
	if len(entries) == 0 {
		return ""
	}
	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return strings.Join(values, "|")
}
