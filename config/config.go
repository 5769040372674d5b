// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required chat credentials, use ValidateChatReady.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultChannel is the channel value used when none is configured.
const DefaultChannel = ""

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	// Network tags every recorded event, e.g. "twitch".
	Network string

	// Twitch chat
	TwitchBotUsername string
	TwitchOAuthToken  string
	TwitchChannels    []string

	// Commands
	CommandPrefixes []string
	LocaleFile      string

	// Storage
	StoreBackend string
	DBDsn        string
	StoreTimeout time.Duration

	// CensusSchedule is the cron schedule for the stored-identities gauge;
	// "off" disables it.
	CensusSchedule string

	// HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It doesn't fail if Twitch creds are missing;
// use ValidateChatReady() when you require the chat connection.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Network = envOr("SEEN_NETWORK", "twitch")

	cfg.TwitchBotUsername = strings.ToLower(os.Getenv("TWITCH_BOT_USERNAME"))
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")
	if v := os.Getenv("TWITCH_CHANNELS"); v != "" {
		cfg.TwitchChannels = splitList(v)
	} else if v := os.Getenv("TWITCH_CHANNEL"); v != DefaultChannel {
		cfg.TwitchChannels = []string{v}
	}

	cfg.CommandPrefixes = splitList(envOr("COMMAND_PREFIXES", "!"))
	cfg.LocaleFile = os.Getenv("LOCALE_FILE")

	cfg.StoreBackend = strings.ToLower(envOr("STORE_BACKEND", StorePostgres))
	switch cfg.StoreBackend {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, StorePostgres, StoreMemory)
	}
	cfg.DBDsn = os.Getenv("DB_DSN")

	cfg.StoreTimeout = 5 * time.Second
	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid STORE_TIMEOUT %q: want a positive duration", v)
		}
		cfg.StoreTimeout = d
	}

	cfg.CensusSchedule = envOr("SEEN_CENSUS_SCHEDULE", "@every 5m")
	if cfg.CensusSchedule != "off" {
		if _, err := cron.ParseStandard(cfg.CensusSchedule); err != nil {
			return nil, fmt.Errorf("invalid SEEN_CENSUS_SCHEDULE %q: %w", cfg.CensusSchedule, err)
		}
	}

	cfg.HTTPAddr = envOr("HTTP_ADDR", ":8080")

	return cfg, nil
}

// ValidateChatReady checks required fields when the chat connection is enabled.
func (c *Config) ValidateChatReady() error {
	if len(c.TwitchChannels) == 0 || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNELS (or TWITCH_CHANNEL), TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList splits a comma separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
