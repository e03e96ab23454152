package core

import "time"

// Config represents the complete scriptbot configuration structure
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Pager    PagerConfig    `yaml:"pager"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiscordConfig represents the Discord connection settings
type DiscordConfig struct {
	Token   string `yaml:"token"`
	Prefix  string `yaml:"prefix"`   // Legacy text command prefix (default: "!")
	GuildID string `yaml:"guild_id"` // Register slash commands for one guild; empty registers globally
	Status  string `yaml:"status"`   // Presence text shown once connected
}

// PagerConfig represents result paging configuration
type PagerConfig struct {
	Timeout      string `yaml:"timeout"`        // Navigation wait (e.g., "60s")
	ListPageSize int    `yaml:"list_page_size"` // Entries per list page (default: 5)

	timeout time.Duration
}

// NavigationTimeout returns the parsed navigation timeout
func (p PagerConfig) NavigationTimeout() time.Duration {
	return p.timeout
}

// UpstreamConfig represents the script API client configuration
type UpstreamConfig struct {
	ScriptBloxURL string  `yaml:"scriptblox_url"`
	RscriptsURL   string  `yaml:"rscripts_url"`
	Timeout       string  `yaml:"timeout"`    // Per-request HTTP timeout (default: "15s")
	RateLimit     float64 `yaml:"rate_limit"` // Outbound requests per second (default: 5)
	UserAgent     string  `yaml:"user_agent"`

	timeout time.Duration
}

// RequestTimeout returns the parsed per-request timeout
func (u UpstreamConfig) RequestTimeout() time.Duration {
	return u.timeout
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, text
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     *bool  `yaml:"compress"`      // Whether to compress old logs (default: true)
	EnableStdout *bool  `yaml:"enable_stdout"` // Also output to stdout (default: true)
}
