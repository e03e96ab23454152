// Package core provides the invocation engine and configuration management for scriptbot.
//
// The core package connects the Discord adapter with the script APIs. It handles:
//
//   - Configuration loading and validation (YAML, ${VAR} expansion, .env files)
//   - Command routing for prefix and slash commands
//   - Upstream fetches and error reporting
//   - Building pager sessions and driving them to completion
//   - The per-user active search guard
//
// # Example Configuration
//
//	discord:
//	  token: "${BOT_TOKEN}"
//	  prefix: "!"
//	pager:
//	  timeout: "60s"
//	upstream:
//	  rate_limit: 5
//	logging:
//	  level: info
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/keepmind9/scriptbot/internal/logger"
	"github.com/keepmind9/scriptbot/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPrefix          = "!"
	DefaultStatus          = "Script Searcher | /search or !search"
	DefaultPagerTimeout    = "60s"
	DefaultUpstreamTimeout = "15s"
	DefaultLogLevel        = "info"

	// TokenEnvVar is read when the config file leaves discord.token empty
	TokenEnvVar = "BOT_TOKEN"
)

// ErrMissingToken is returned when no bot token is configured
var ErrMissingToken = errors.New("discord token is required (set discord.token or " + TokenEnvVar + ")")

// LoadConfig loads configuration from file and expands environment variables.
// A missing file at configPath is not an error: defaults and the environment
// are used instead. A .env file in the working directory is loaded first.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.WithField("config_file", configPath).Debug("config-file-not-found-using-defaults")
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			expandedData, err := expandEnv(string(data))
			if err != nil {
				return nil, fmt.Errorf("failed to expand environment variables: %w", err)
			}
			if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig fills defaults and checks the configuration
func validateConfig(config *Config) error {
	if config.Discord.Token == "" {
		config.Discord.Token = os.Getenv(TokenEnvVar)
	}
	if config.Discord.Token == "" {
		return ErrMissingToken
	}
	if config.Discord.Prefix == "" {
		config.Discord.Prefix = DefaultPrefix
	}
	if config.Discord.Status == "" {
		config.Discord.Status = DefaultStatus
	}

	if config.Pager.Timeout == "" {
		config.Pager.Timeout = DefaultPagerTimeout
	}
	timeout, err := time.ParseDuration(config.Pager.Timeout)
	if err != nil {
		return fmt.Errorf("invalid pager.timeout: %w", err)
	}
	if timeout < 5*time.Second || timeout > 15*time.Minute {
		return fmt.Errorf("pager.timeout must be between 5s and 15m (got %v)", timeout)
	}
	config.Pager.timeout = timeout

	if config.Pager.ListPageSize == 0 {
		config.Pager.ListPageSize = constants.DefaultListPageSize
	}
	if config.Pager.ListPageSize < 1 || config.Pager.ListPageSize > constants.MaxListPageSize {
		return fmt.Errorf("pager.list_page_size must be between 1 and %d (got %d)",
			constants.MaxListPageSize, config.Pager.ListPageSize)
	}

	if config.Upstream.ScriptBloxURL == "" {
		config.Upstream.ScriptBloxURL = constants.DefaultScriptBloxURL
	}
	if config.Upstream.RscriptsURL == "" {
		config.Upstream.RscriptsURL = constants.DefaultRscriptsURL
	}
	for name, raw := range map[string]string{
		"upstream.scriptblox_url": config.Upstream.ScriptBloxURL,
		"upstream.rscripts_url":   config.Upstream.RscriptsURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL (got %q)", name, raw)
		}
	}
	config.Upstream.ScriptBloxURL = strings.TrimRight(config.Upstream.ScriptBloxURL, "/")
	config.Upstream.RscriptsURL = strings.TrimRight(config.Upstream.RscriptsURL, "/")

	if config.Upstream.Timeout == "" {
		config.Upstream.Timeout = DefaultUpstreamTimeout
	}
	reqTimeout, err := time.ParseDuration(config.Upstream.Timeout)
	if err != nil {
		return fmt.Errorf("invalid upstream.timeout: %w", err)
	}
	if reqTimeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive (got %v)", reqTimeout)
	}
	config.Upstream.timeout = reqTimeout

	if config.Upstream.RateLimit == 0 {
		config.Upstream.RateLimit = constants.DefaultRateLimit
	}
	if config.Upstream.RateLimit < 0 {
		return fmt.Errorf("upstream.rate_limit must be positive (got %v)", config.Upstream.RateLimit)
	}
	if config.Upstream.UserAgent == "" {
		config.Upstream.UserAgent = constants.DefaultUserAgent
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = constants.DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = constants.DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}
	if config.Logging.Compress == nil {
		config.Logging.Compress = boolPtr(true)
	}
	if config.Logging.EnableStdout == nil {
		config.Logging.EnableStdout = boolPtr(true)
	}

	return nil
}

// LoggerConfig converts the logging section for logger.InitLogger
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:        c.Logging.Level,
		Format:       c.Logging.Format,
		File:         c.Logging.File,
		MaxSize:      c.Logging.MaxSize,
		MaxBackups:   c.Logging.MaxBackups,
		MaxAge:       c.Logging.MaxAge,
		Compress:     c.Logging.Compress != nil && *c.Logging.Compress,
		EnableStdout: c.Logging.EnableStdout != nil && *c.Logging.EnableStdout,
	}
}

func boolPtr(b bool) *bool {
	return &b
}
