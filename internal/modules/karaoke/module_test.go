package karaoke

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/karaoke/internal/bot"
)

func TestKaraokeModule_LoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "defaults", env: map[string]string{}},
		{
			name: "all set",
			env: map[string]string{
				"KARAOKE_DB_PATH":          "karaoke.db",
				"KARAOKE_BOARD_CHANNEL_ID": "123456789012345678",
				"KARAOKE_ADMIN_ROLE_ID":    "223456789012345678",
				"LAVALINK_ADDRESS":         "localhost:2333",
				"LAVALINK_PASSWORD":        "youshallnotpass",
			},
		},
		{name: "invalid channel", env: map[string]string{"KARAOKE_BOARD_CHANNEL_ID": "general"}, wantErr: true},
		{name: "invalid role", env: map[string]string{"KARAOKE_ADMIN_ROLE_ID": "admins"}, wantErr: true},
		{name: "lavalink without password", env: map[string]string{"LAVALINK_ADDRESS": "localhost:2333"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"KARAOKE_DB_PATH", "KARAOKE_BOARD_CHANNEL_ID", "KARAOKE_ADMIN_ROLE_ID",
				"LAVALINK_ADDRESS", "LAVALINK_PASSWORD", "KARAOKE_SEARCH_SUFFIX",
			} {
				value, ok := tt.env[key]
				t.Setenv(key, value)
				if !ok {
					os.Unsetenv(key)
				}
			}

			m := &KaraokeModule{}
			err := m.LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.config.SearchSuffix != "karaoke" {
				t.Errorf("expected default search suffix, got %q", m.config.SearchSuffix)
			}
		})
	}
}

func TestConfig_IDs(t *testing.T) {
	cfg := &Config{BoardChannelID: "123456789012345678"}

	if got := cfg.boardChannelID(); got.String() != "123456789012345678" {
		t.Errorf("expected board channel 123456789012345678, got %s", got)
	}
	if got := cfg.adminRoleID(); got != 0 {
		t.Errorf("expected no admin role, got %s", got)
	}
}

func TestKaraokeModule_InitWithoutSession(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "memory", config: &Config{SearchSuffix: "karaoke"}},
		{name: "sqlite", config: &Config{DBPath: filepath.Join(t.TempDir(), "karaoke.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &KaraokeModule{config: tt.config}

			if err := m.Init(bot.ModuleDependencies{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			t.Cleanup(func() {
				if err := m.Shutdown(); err != nil {
					t.Errorf("unexpected shutdown error: %v", err)
				}
			})

			if (m.sqlite != nil) != (tt.config.DBPath != "") {
				t.Errorf("expected persistent store %v", tt.config.DBPath != "")
			}
			if m.board != nil {
				t.Error("expected no queue board without a session")
			}
			if m.searcher != nil {
				t.Error("expected no song searcher without a session")
			}

			commands := m.Commands()
			handlers := m.CommandHandlers()
			if len(commands) != len(handlers) {
				t.Fatalf("expected a handler per command, got %d commands and %d handlers", len(commands), len(handlers))
			}
			for _, cmd := range commands {
				if handlers[cmd.Name] == nil {
					t.Errorf("expected handler for command %q", cmd.Name)
				}
			}
			if m.ComponentHandlers()["karaoke"] == nil {
				t.Error("expected board button handler")
			}
			if len(m.EventHandlers()) != 1 {
				t.Errorf("expected 1 event handler, got %d", len(m.EventHandlers()))
			}
		})
	}
}

func TestKaraokeModule_InitFailureReleasesResources(t *testing.T) {
	session := &discordgo.Session{State: discordgo.NewState()}
	session.State.User = &discordgo.User{ID: "karaokebot"}

	path := filepath.Join(t.TempDir(), "karaoke.db")
	m := &KaraokeModule{config: &Config{
		DBPath:           path,
		LavalinkAddress:  "localhost:2333",
		LavalinkPassword: "youshallnotpass",
	}}

	if err := m.Init(bot.ModuleDependencies{Session: session}); err == nil {
		t.Fatal("expected error for an unparsable bot user ID, got nil")
	}

	if m.sqlite != nil {
		t.Error("expected the database to be closed")
	}
	if m.bus != nil {
		t.Error("expected the snapshot bus to be closed")
	}
	if err := m.Shutdown(); err != nil {
		t.Errorf("unexpected shutdown error after failed init: %v", err)
	}

	// The same database opens cleanly once the failed module let go of it.
	retry := &KaraokeModule{config: &Config{DBPath: path}}
	if err := retry.Init(bot.ModuleDependencies{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := retry.Shutdown(); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestKaraokeModule_ShutdownBeforeInit(t *testing.T) {
	m := &KaraokeModule{}
	if err := m.Shutdown(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
