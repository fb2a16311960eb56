package vk_music

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"

	"github.com/bulbex/bulbex/internal/bot"
	"github.com/bulbex/bulbex/internal/modules/vk_music/application/events"
	"github.com/bulbex/bulbex/internal/modules/vk_music/application/usecases"
	"github.com/bulbex/bulbex/internal/modules/vk_music/infrastructure"
	"github.com/bulbex/bulbex/internal/modules/vk_music/presentation"
	"github.com/bulbex/bulbex/internal/modules/vk_music/presentation/discord"
)

func init() {
	bot.Register(&VKMusicModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*VKMusicModule)(nil)

// VKMusicModule streams VK music into voice channels.
type VKMusicModule struct {
	config            *Config
	commandHandlers   *discord.CommandHandlers
	componentHandlers *discord.ComponentHandlers
	lavalinkAdapter   *infrastructure.LavalinkAdapter
	repo              *infrastructure.MemoryRepository

	eventBus            *events.Bus
	playbackHandler     *events.PlaybackEventHandler
	notificationHandler *events.NotificationEventHandler
	selection           *usecases.SelectionService

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *VKMusicModule) Name() string {
	return "vk_music"
}

// Commands returns the slash commands for this module.
func (m *VKMusicModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *VKMusicModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":     m.commandHandlers.HandlePlay,
		"search":   m.commandHandlers.HandleSearch,
		"playlist": m.commandHandlers.HandlePlaylist,
		"queue":    m.commandHandlers.HandleQueue,
		"skip":     m.commandHandlers.HandleSkip,
		"stop":     m.commandHandlers.HandleStop,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *VKMusicModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *VKMusicModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *VKMusicModule) Init(deps bot.ModuleDependencies) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.eventBus = events.NewBus(events.DefaultEventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(deps.Session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	})
	if err != nil {
		return err
	}
	lavalinkAdapter.SetEventPublisher(m.eventBus)
	m.lavalinkAdapter = lavalinkAdapter

	repo := infrastructure.NewMemoryRepository()
	m.repo = repo
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	auth := infrastructure.NewAuthTokenManager(infrastructure.KateMobile, "")
	searcher := infrastructure.NewVKMusicClient(infrastructure.VKClientConfig{
		Identity: infrastructure.KateMobile,
		Credentials: infrastructure.VKCredentials{
			Login:    m.config.VKLogin,
			Password: m.config.VKPassword,
		},
		Auth:              auth,
		BypassToken:       m.config.BypassToken(),
		RequestsPerSecond: m.config.VKRequestsPerSecond,
	})

	playback := usecases.NewPlaybackService(
		repo,
		lavalinkAdapter,
		lavalinkAdapter,
		voiceState,
		m.eventBus,
	)
	queue := usecases.NewQueueService(repo)
	m.selection = usecases.NewSelectionService(playback, usecases.DefaultSelectionTimeout)

	m.playbackHandler = events.NewPlaybackEventHandler(
		playback.PlayNext,
		playback.CompleteTrack,
		m.eventBus,
	)
	m.notificationHandler = events.NewNotificationEventHandler(notifier, m.eventBus)

	m.playbackHandler.Start(m.ctx)
	m.notificationHandler.Start(m.ctx)

	m.commandHandlers = discord.NewCommandHandlers(playback, queue, m.selection, searcher)
	m.componentHandlers = discord.NewComponentHandlers(m.selection)

	slog.Info("vk_music module initialized",
		"bypass_auth", m.config.VKBypassAuth,
		"lavalink", m.config.LavalinkAddress,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *VKMusicModule) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}

	if m.selection != nil {
		m.selection.Shutdown()
	}

	if m.playbackHandler != nil {
		m.playbackHandler.Stop()
	}
	if m.notificationHandler != nil {
		m.notificationHandler.Stop()
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.repo != nil {
		slog.Info("vk_music module shut down", "active_sessions", m.repo.Count())
	}

	return nil
}

// Event handlers.

func (m *VKMusicModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *VKMusicModule) handleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
}

func (m *VKMusicModule) handleInteractionCreate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if m.componentHandlers == nil {
		return
	}

	if m.componentHandlers.Handles(i.MessageComponentData().CustomID) {
		m.componentHandlers.HandleSelection(s, i)
	}
}
