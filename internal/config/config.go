package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Health    HealthConfig    `mapstructure:"health"`
}

// BotConfig holds Telegram bot tokens and channel/operator identifiers.
type BotConfig struct {
	// Token is the user-facing content bot token.
	Token string `mapstructure:"token"`
	// AdminToken is the operator panel bot token.
	AdminToken string `mapstructure:"admin_token"`
	// APIURL overrides the Telegram Bot API endpoint (empty = default).
	APIURL string `mapstructure:"api_url"`
	// AdminIDs lists operator Telegram user IDs allowed into the panel.
	AdminIDs []int64 `mapstructure:"admin_ids"`
	// StorageChannelID is the archive channel bundle items are copied into.
	StorageChannelID int64 `mapstructure:"storage_channel_id"`
	// PollTimeout is the long-poll timeout for update fetching.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// MongoConfig holds document store connection configuration.
type MongoConfig struct {
	URL            string        `mapstructure:"url"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// BroadcastConfig holds fan-out pacing configuration.
type BroadcastConfig struct {
	// SendInterval is the minimum wall-clock interval between sends.
	SendInterval time.Duration `mapstructure:"send_interval"`
	// DeleteInterval is the pacing between undo deletions.
	DeleteInterval time.Duration `mapstructure:"delete_interval"`
	// ProgressEvery controls how often undo progress is reported.
	ProgressEvery int `mapstructure:"progress_every"`
	// StaleAfter is the age past which a batch still marked processing
	// is considered interrupted and swept to incomplete.
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// BackupConfig holds the periodic user export configuration.
type BackupConfig struct {
	ChannelID int64         `mapstructure:"channel_id"`
	Interval  time.Duration `mapstructure:"interval"`
	Dir       string        `mapstructure:"dir"`
}

// ReportConfig holds the periodic stats/survey report configuration.
type ReportConfig struct {
	ChannelID int64         `mapstructure:"channel_id"`
	Interval  time.Duration `mapstructure:"interval"`
	Timezone  string        `mapstructure:"timezone"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"` // stdout (default) or file
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// HealthConfig holds the health/metrics HTTP listener configuration.
type HealthConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the listener
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory.
// Environment variables with prefix ACTCAST_ override file values.
// For example, ACTCAST_MONGO_URL overrides mongo.url.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("ACTCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "act_cast_db")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)

	v.SetDefault("bot.poll_timeout", 10*time.Second)

	v.SetDefault("broadcast.send_interval", 50*time.Millisecond)
	v.SetDefault("broadcast.delete_interval", 35*time.Millisecond)
	v.SetDefault("broadcast.progress_every", 100)
	v.SetDefault("broadcast.stale_after", 6*time.Hour)

	v.SetDefault("backup.interval", time.Hour)
	v.SetDefault("backup.dir", "")

	v.SetDefault("report.interval", time.Hour)
	v.SetDefault("report.timezone", "Asia/Tehran")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)
}

// ValidateAdmin checks the fields the operator panel cannot run without.
func (c *Config) ValidateAdmin() error {
	if c.Bot.AdminToken == "" {
		return fmt.Errorf("bot.admin_token is required")
	}
	if c.Bot.StorageChannelID == 0 {
		return fmt.Errorf("bot.storage_channel_id is required")
	}
	if len(c.Bot.AdminIDs) == 0 {
		return fmt.Errorf("bot.admin_ids is required")
	}
	return nil
}

// ValidateContent checks the fields the content bot cannot run without.
func (c *Config) ValidateContent() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	return nil
}

// ValidateBackup checks the fields the backup service cannot run without.
func (c *Config) ValidateBackup() error {
	if c.Bot.AdminToken == "" {
		return fmt.Errorf("bot.admin_token is required")
	}
	if c.Backup.ChannelID == 0 {
		return fmt.Errorf("backup.channel_id is required")
	}
	return nil
}

// ValidateReport checks the fields the report service cannot run without.
func (c *Config) ValidateReport() error {
	if c.Bot.AdminToken == "" {
		return fmt.Errorf("bot.admin_token is required")
	}
	if c.Report.ChannelID == 0 {
		return fmt.Errorf("report.channel_id is required")
	}
	return nil
}

// IsAdmin reports whether the given Telegram user ID is an operator.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
