package karaoke

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

// Config holds the karaoke module configuration.
type Config struct {
	// DBPath is the SQLite database file. Empty keeps the queue in memory.
	DBPath         string `env:"KARAOKE_DB_PATH"`
	BoardChannelID string `env:"KARAOKE_BOARD_CHANNEL_ID"`
	AdminRoleID    string `env:"KARAOKE_ADMIN_ROLE_ID"`

	// Song lookup is disabled unless LavalinkAddress is set.
	LavalinkAddress  string `env:"LAVALINK_ADDRESS"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"`
	SearchSuffix     string `env:"KARAOKE_SEARCH_SUFFIX" envDefault:"karaoke"`

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `env:"KARAOKE_METRICS_ADDR"`
}

func (c *Config) validate() error {
	if _, err := parseOptionalID(c.BoardChannelID); err != nil {
		return fmt.Errorf("KARAOKE_BOARD_CHANNEL_ID: %w", err)
	}
	if _, err := parseOptionalID(c.AdminRoleID); err != nil {
		return fmt.Errorf("KARAOKE_ADMIN_ROLE_ID: %w", err)
	}
	if c.LavalinkAddress != "" && c.LavalinkPassword == "" {
		return fmt.Errorf("LAVALINK_PASSWORD is required when LAVALINK_ADDRESS is set")
	}
	return nil
}

func (c *Config) boardChannelID() snowflake.ID {
	id, _ := parseOptionalID(c.BoardChannelID)
	return id
}

func (c *Config) adminRoleID() snowflake.ID {
	id, _ := parseOptionalID(c.AdminRoleID)
	return id
}

// parseOptionalID parses a Discord ID, treating an empty string as 0.
func parseOptionalID(s string) (snowflake.ID, error) {
	if s == "" {
		return 0, nil
	}
	return snowflake.Parse(s)
}
