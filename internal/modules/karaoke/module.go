package karaoke

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sglre6355/karaoke/internal/bot"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/infrastructure"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/presentation/discord"
)

func init() {
	bot.Register(&KaraokeModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*KaraokeModule)(nil)

// KaraokeModule provides the karaoke queue commands and the live queue board.
type KaraokeModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler

	bus        *infrastructure.SnapshotBus
	sqlite     *infrastructure.SQLiteStore
	searcher   *infrastructure.LavalinkSongSearcher
	projection *usecases.ProjectionService
	board      *infrastructure.QueueBoard
	metrics    *infrastructure.MetricsServer
}

// Name returns the module name.
func (m *KaraokeModule) Name() string {
	return "karaoke"
}

// Commands returns the slash commands for this module.
func (m *KaraokeModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *KaraokeModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"sing":     m.commandHandlers.HandleSing,
		"queue":    m.commandHandlers.HandleQueue,
		"history":  m.commandHandlers.HandleHistory,
		"position": m.commandHandlers.HandlePosition,
		"done":     m.commandHandlers.HandleDone,
		"remove":   m.commandHandlers.HandleRemove,
		"move":     m.commandHandlers.HandleMove,
		"role":     m.commandHandlers.HandleRole,
	}
}

// ComponentHandlers returns the queue board button handlers.
func (m *KaraokeModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		discord.ComponentPrefix: m.commandHandlers.HandleBoardButton,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *KaraokeModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *KaraokeModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module. On failure every resource opened so far is
// released again.
func (m *KaraokeModule) Init(deps bot.ModuleDependencies) (err error) {
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	defer func() {
		if err != nil {
			m.release()
		}
	}()

	m.bus = infrastructure.NewSnapshotBus()

	records, roles, err := m.openStores()
	if err != nil {
		return err
	}

	var lookup *usecases.SongLookupService
	if deps.Session != nil && m.config.LavalinkAddress != "" {
		botID, err := snowflake.Parse(deps.Session.State.User.ID)
		if err != nil {
			return fmt.Errorf("invalid bot user ID: %w", err)
		}
		m.searcher, err = infrastructure.NewLavalinkSongSearcher(
			context.Background(),
			botID,
			infrastructure.LavalinkConfig{
				Address:  m.config.LavalinkAddress,
				Password: m.config.LavalinkPassword,
				Secure:   m.config.LavalinkSecure,
			},
		)
		if err != nil {
			return err
		}
		lookup = usecases.NewSongLookupService(m.searcher, m.config.SearchSuffix)
	} else {
		slog.Info("karaoke song lookup disabled")
	}

	if deps.Session == nil {
		slog.Warn("karaoke module initialized without session, identity resolution and queue board disabled")
	}
	resolver := infrastructure.NewDiscordActorResolver(deps.Session, roles, m.config.adminRoleID())

	// Create services
	queue := usecases.NewQueueService(records, lookup)
	m.projection = usecases.NewProjectionService(records)
	roleService := usecases.NewRoleService(roles)
	identity := usecases.NewIdentityService(resolver)

	registry := prometheus.NewRegistry()
	m.projection.OnProjection(infrastructure.NewQueueMetrics(registry).Observe)
	if m.config.MetricsAddr != "" {
		m.metrics = infrastructure.StartMetricsServer(m.config.MetricsAddr, registry)
	}

	if channelID := m.config.boardChannelID(); channelID != 0 && deps.Session != nil {
		m.board = infrastructure.NewQueueBoard(deps.Session, channelID, discord.BoardRenderer(time.Now))
		m.projection.OnProjection(m.board.Update)
	}
	m.projection.Start()

	// Create presentation handlers
	m.commandHandlers = discord.NewCommandHandlers(queue, m.projection, roleService, identity, time.Now)
	m.autocomplete = discord.NewAutocompleteHandler(lookup, m.projection)

	slog.Info("karaoke module initialized",
		"persistent", m.sqlite != nil,
		"song_lookup", lookup != nil,
		"queue_board", m.board != nil,
		"metrics", m.metrics != nil,
	)

	return nil
}

// openStores opens the SQLite store when a path is configured and falls back
// to memory stores otherwise.
func (m *KaraokeModule) openStores() (ports.RecordStore, ports.RoleStore, error) {
	if m.config.DBPath == "" {
		return infrastructure.NewMemoryRecordStore(m.bus, nil), infrastructure.NewMemoryRoleStore(), nil
	}

	store, err := infrastructure.OpenSQLiteStore(m.config.DBPath, m.bus, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open karaoke store: %w", err)
	}
	m.sqlite = store
	return store, store, nil
}

// release shuts down whatever a failed Init left open.
func (m *KaraokeModule) release() {
	if err := m.Shutdown(); err != nil {
		slog.Warn("failed to release karaoke resources", "error", err)
	}
	m.bus = nil
	m.sqlite = nil
	m.searcher = nil
	m.projection = nil
	m.board = nil
	m.metrics = nil
}

// Shutdown cleans up module resources.
func (m *KaraokeModule) Shutdown() error {
	// Stop listening before the bus goes away
	if m.projection != nil {
		m.projection.Stop()
	}

	if m.bus != nil {
		m.bus.Close()
	}

	if m.searcher != nil {
		m.searcher.Close()
	}

	if m.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.metrics.Close(ctx); err != nil {
			slog.Warn("failed to stop metrics server", "error", err)
		}
	}

	if m.sqlite != nil {
		return m.sqlite.Close()
	}

	return nil
}

func (m *KaraokeModule) handleInteractionCreate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete || m.autocomplete == nil {
		return
	}

	responder := bot.NewDiscordResponder(s, i.Interaction)
	if err := m.autocomplete.Handle(s, i, responder); err != nil {
		slog.Warn("failed to respond to autocomplete", "command", i.ApplicationCommandData().Name, "error", err)
	}
}
