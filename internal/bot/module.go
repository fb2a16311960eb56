package bot

import "github.com/bwmarrin/discordgo"

// InteractionHandler handles one slash command invocation. The responder
// abstracts the interaction reply so handlers stay testable.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is a discordgo event handler of any signature, e.g.
// func(s *discordgo.Session, e *discordgo.VoiceStateUpdate). It is passed
// to session.AddHandler as-is.
type EventHandler any

// ModuleDependencies carries what a module gets at init time.
type ModuleDependencies struct {
	Config  *Config
	Session *discordgo.Session

	// ResyncCommands re-registers every module's commands with Discord.
	// Exposed for debug tooling.
	ResyncCommands func() error
}

// Module is a self-contained feature unit. Modules register themselves
// with the global registry from an init function and are composed by the
// bot at startup.
type Module interface {
	// Name is the unique identifier for the module.
	Name() string

	// Commands lists the slash commands the module provides.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers lists additional discordgo handlers the module needs,
	// such as voice or component interaction routing.
	EventHandlers() []EventHandler

	// Init wires the module's internals. The session is already open.
	Init(deps ModuleDependencies) error

	// Shutdown releases the module's resources.
	Shutdown() error
}

// ConfigurableModule is implemented by modules that read environment
// configuration. LoadConfig runs before Init and before the Discord
// connection opens, so bad config aborts startup early.
type ConfigurableModule interface {
	LoadConfig() error
}
