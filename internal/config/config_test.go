package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "bot:\n  admin_token: test-token\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Mongo.URL != "mongodb://localhost:27017" {
		t.Errorf("unexpected mongo URL: %s", cfg.Mongo.URL)
	}
	if cfg.Mongo.Database != "act_cast_db" {
		t.Errorf("unexpected mongo database: %s", cfg.Mongo.Database)
	}
	if cfg.Broadcast.SendInterval != 50*time.Millisecond {
		t.Errorf("expected send interval 50ms, got %v", cfg.Broadcast.SendInterval)
	}
	if cfg.Broadcast.DeleteInterval != 35*time.Millisecond {
		t.Errorf("expected delete interval 35ms, got %v", cfg.Broadcast.DeleteInterval)
	}
	if cfg.Broadcast.ProgressEvery != 100 {
		t.Errorf("expected progress every 100, got %d", cfg.Broadcast.ProgressEvery)
	}
	if cfg.Backup.Interval != time.Hour {
		t.Errorf("expected backup interval 1h, got %v", cfg.Backup.Interval)
	}
	if cfg.Report.Timezone != "Asia/Tehran" {
		t.Errorf("unexpected report timezone: %s", cfg.Report.Timezone)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Bot.AdminToken != "test-token" {
		t.Errorf("unexpected admin token: %s", cfg.Bot.AdminToken)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := writeConfig(t, `
bot:
  admin_token: tok
  storage_channel_id: -1001234567890
  admin_ids: [111, 222]
broadcast:
  send_interval: 80ms
mongo:
  database: other_db
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Bot.StorageChannelID != -1001234567890 {
		t.Errorf("unexpected storage channel id: %d", cfg.Bot.StorageChannelID)
	}
	if len(cfg.Bot.AdminIDs) != 2 || cfg.Bot.AdminIDs[0] != 111 {
		t.Errorf("unexpected admin ids: %v", cfg.Bot.AdminIDs)
	}
	if cfg.Broadcast.SendInterval != 80*time.Millisecond {
		t.Errorf("expected send interval 80ms, got %v", cfg.Broadcast.SendInterval)
	}
	if cfg.Mongo.Database != "other_db" {
		t.Errorf("unexpected mongo database: %s", cfg.Mongo.Database)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error without config file, got %v", err)
	}
	if cfg.Mongo.URL != "mongodb://localhost:27017" {
		t.Errorf("unexpected mongo URL: %s", cfg.Mongo.URL)
	}
}

func TestValidateAdmin(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "complete",
			cfg: Config{Bot: BotConfig{
				AdminToken:       "tok",
				StorageChannelID: -100,
				AdminIDs:         []int64{1},
			}},
			wantErr: false,
		},
		{
			name:    "missing token",
			cfg:     Config{Bot: BotConfig{StorageChannelID: -100, AdminIDs: []int64{1}}},
			wantErr: true,
		},
		{
			name:    "missing storage channel",
			cfg:     Config{Bot: BotConfig{AdminToken: "tok", AdminIDs: []int64{1}}},
			wantErr: true,
		},
		{
			name:    "missing admin ids",
			cfg:     Config{Bot: BotConfig{AdminToken: "tok", StorageChannelID: -100}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateAdmin()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdmin() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{Bot: BotConfig{AdminIDs: []int64{10, 20}}}

	if !cfg.IsAdmin(10) {
		t.Error("expected 10 to be admin")
	}
	if cfg.IsAdmin(30) {
		t.Error("expected 30 not to be admin")
	}
}
