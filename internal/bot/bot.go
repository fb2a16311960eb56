package bot

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Bot owns the Discord session and coordinates the registered modules
// through their lifecycle: config load, init, command registration,
// interaction dispatch, shutdown.
type Bot struct {
	config  *Config
	session *discordgo.Session
	modules []Module

	// handlersMu guards handlers: the interaction handler is registered
	// before the session opens, so lookups can race the map build.
	handlersMu sync.RWMutex
	handlers   map[string]InteractionHandler
}

func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:   cfg,
		modules:  make([]Module, 0),
		handlers: make(map[string]InteractionHandler),
	}
}

// LoadModules pulls the module set from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
	slog.Info("loaded modules", "modules", globalRegistry.Names())
}

// Start brings the bot online: module configs are loaded before any
// connection is opened so a missing env var fails fast, then the session
// is opened before module init because modules need the resolved bot
// identity from session state.
func (b *Bot) Start() error {
	for _, mod := range b.modules {
		if cm, ok := mod.(ConfigurableModule); ok {
			if err := cm.LoadConfig(); err != nil {
				return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
			}
		}
	}

	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	// Register the interaction handler before opening so commands
	// arriving during module init are answered rather than dropped.
	b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	b.buildHandlerMap()
	// Module event handlers need initialized module state, so events
	// arriving between Open and this point are dropped.
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}

	if err := b.RegisterCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)
	return nil
}

// Stop shuts every module down, then closes the session. Module shutdown
// failures are logged rather than propagated so one bad module cannot
// keep the session open.
func (b *Bot) Stop() error {
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Config:         b.config,
		Session:        b.session,
		ResyncCommands: b.RegisterCommands,
	}

	names := make([]string, 0, len(b.modules))
	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
		names = append(names, mod.Name())
	}
	slog.Info("initialized modules", "modules", names)

	return nil
}

func (b *Bot) buildHandlerMap() {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()

	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())
	}
}

func (b *Bot) lookupHandler(name string) (InteractionHandler, bool) {
	b.handlersMu.RLock()
	defer b.handlersMu.RUnlock()

	handler, ok := b.handlers[name]
	return handler, ok
}

func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// commandScope returns the guild ID commands are registered against.
// An empty string registers commands globally.
func (b *Bot) commandScope() string {
	if b.config.GuildID != 0 {
		return b.config.GuildID.String()
	}
	return ""
}

// RegisterCommands registers every module command with Discord. Safe to
// call again after startup to resync the command set.
func (b *Bot) RegisterCommands() error {
	scope := b.commandScope()

	for _, cmd := range b.collectCommands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, scope, cmd)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		slog.Debug("registered command", "command", cmd.Name, "guild", scope)
	}
	return nil
}

const (
	colorUnknownCommand = 0xFFFF00
	colorHandlerError   = 0xFF0000
)

// handleInteraction dispatches slash commands to module handlers. Other
// interaction types are routed by module event handlers.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	handler, ok := b.lookupHandler(cmdName)
	if !ok {
		slog.Warn("found no handler for command", "command", cmdName)
		b.replyEmbed(s, i, "Unknown Command", "This command is not recognized.", colorUnknownCommand)
		return
	}

	responder := NewDiscordResponder(s, i.Interaction)
	if err := handler(s, i, responder); err != nil {
		slog.Error("failed to handle command", "command", cmdName, "error", err)
		b.replyEmbed(s, i, "Error", "An error occurred while processing your command.",
			colorHandlerError)
	}
}

func (b *Bot) replyEmbed(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	title, description string,
	color int,
) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
		},
	})
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
