package debug

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/bot"
)

func init() {
	bot.Register(&DebugModule{})
}

const colorError = 0xE74C3C

// DebugModule provides operator-only introspection commands, gated on
// the trusted-user allowlist.
type DebugModule struct {
	config         *bot.Config
	session        *discordgo.Session
	resyncCommands func() error
}

// Name returns the module name.
func (m *DebugModule) Name() string {
	return "debug"
}

// Commands returns the slash commands for this module.
func (m *DebugModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "debug_guilds",
			Description: "List the guilds this bot is linked to",
		},
		{
			Name:        "debug_resync",
			Description: "Re-register slash commands with Discord",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *DebugModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"debug_guilds": m.handleGuilds,
		"debug_resync": m.handleResync,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *DebugModule) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *DebugModule) Init(deps bot.ModuleDependencies) error {
	m.config = deps.Config
	m.session = deps.Session
	m.resyncCommands = deps.ResyncCommands
	return nil
}

// Shutdown cleans up module resources.
func (m *DebugModule) Shutdown() error {
	return nil
}

// checkTrusted verifies the caller is on the allowlist, responding with
// a refusal if not.
func (m *DebugModule) checkTrusted(i *discordgo.InteractionCreate, r bot.Responder) (bool, error) {
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err == nil && m.config.IsTrusted(userID) {
		return true, nil
	}

	slog.Warn("untrusted debug command attempt",
		"command", i.ApplicationCommandData().Name,
		"user", i.Member.User.ID,
	)

	return false, r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: "You are not allowed to use debug commands.",
					Color:       colorError,
				},
			},
		},
	})
}

func (m *DebugModule) handleGuilds(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	if ok, err := m.checkTrusted(i, r); !ok {
		return err
	}

	var lines []string
	for idx, guild := range s.State.Guilds {
		lines = append(lines, fmt.Sprintf("`#%d %s` — `%s`", idx+1, guild.Name, guild.ID))
	}
	if len(lines) == 0 {
		lines = append(lines, "No linked guilds.")
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Linked guilds",
					Description: strings.Join(lines, "\n"),
				},
			},
		},
	})
}

func (m *DebugModule) handleResync(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	if ok, err := m.checkTrusted(i, r); !ok {
		return err
	}

	if err := m.resyncCommands(); err != nil {
		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{
					{
						Description: "Command resync failed: " + err.Error(),
						Color:       colorError,
					},
				},
			},
		})
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: "Commands re-registered.",
				},
			},
		},
	})
}
