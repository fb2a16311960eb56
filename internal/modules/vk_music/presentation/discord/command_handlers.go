package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/bot"
	"github.com/bulbex/bulbex/internal/modules/vk_music/application/ports"
	"github.com/bulbex/bulbex/internal/modules/vk_music/application/usecases"
	"github.com/bulbex/bulbex/internal/modules/vk_music/infrastructure"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorVKBlue  = 0x4C75A3
)

// SelectionCustomIDPrefix marks component interactions belonging to
// search selection buttons. The full custom ID is
// prefix:sessionID:index.
const SelectionCustomIDPrefix = "vk_music_select"

const maxQueueListEntries = 15

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	playback  *usecases.PlaybackService
	queue     *usecases.QueueService
	selection *usecases.SelectionService
	searcher  ports.TrackSearcher
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	selection *usecases.SelectionService,
	searcher ports.TrackSearcher,
) *CommandHandlers {
	return &CommandHandlers{
		playback:  playback,
		queue:     queue,
		selection: selection,
		searcher:  searcher,
	}
}

// interactionIDs extracts the guild, user, and channel IDs from an
// interaction.
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID, channelID snowflake.ID, err error) {
	guildID, err = snowflake.Parse(i.GuildID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid guild ID: %w", err)
	}
	userID, err = snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid user ID: %w", err)
	}
	channelID, err = snowflake.Parse(i.ChannelID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid channel ID: %w", err)
	}
	return guildID, userID, channelID, nil
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, userID, channelID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction data")
	}

	query := stringOption(i, "query")
	if strings.TrimSpace(query) == "" {
		return respondError(r, "Give me something to search for.")
	}

	track, err := h.searcher.SearchFirst(ctx, query)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	output, err := h.playback.Enqueue(ctx, usecases.EnqueueInput{
		GuildID:               guildID,
		UserID:                userID,
		NotificationChannelID: channelID,
		Track:                 track,
	})
	if err != nil {
		return respondError(r, userMessage(err))
	}

	description := fmt.Sprintf("Added **%s** to the queue.", track.Display())
	if output.WasPlaying {
		description = fmt.Sprintf("Added **%s** to the queue at position %d.",
			track.Display(), output.Position)
	}

	return respondSuccess(r, description)
}

// HandleSearch handles the /search command.
func (h *CommandHandlers) HandleSearch(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, userID, channelID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction data")
	}

	query := stringOption(i, "query")
	if strings.TrimSpace(query) == "" {
		return respondError(r, "Give me something to search for.")
	}

	tracks, err := h.searcher.SearchMany(ctx, query, 5)
	if err != nil {
		return respondError(r, userMessage(err))
	}
	if len(tracks) == 0 {
		return respondError(r, fmt.Sprintf("Nothing found for **%s**.", query))
	}

	interaction := i.Interaction
	session := h.selection.Open(usecases.OpenSelectionInput{
		GuildID:               guildID,
		UserID:                userID,
		NotificationChannelID: channelID,
		Candidates:            tracks,
		OnExpired: func() {
			// Strip the buttons so the expired choice cannot be clicked.
			empty := []discordgo.MessageComponent{}
			_, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
				Components: &empty,
			})
			if err != nil {
				slog.Warn("failed to disable expired selection buttons", "error", err)
			}
		},
	})

	var lines []string
	for idx, track := range tracks {
		lines = append(lines, fmt.Sprintf("**%d.** %s (%s)",
			idx+1, track.Display(), track.FormattedDuration()))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       fmt.Sprintf("Results for \"%s\"", query),
					Description: strings.Join(lines, "\n"),
					Color:       colorVKBlue,
				},
			},
			Components: selectionButtons(session.ID, len(tracks)),
		},
	})
}

// HandlePlaylist handles the /playlist command.
func (h *CommandHandlers) HandlePlaylist(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, userID, channelID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction data")
	}

	playlistURL := stringOption(i, "url")

	tracks, total, err := h.searcher.FetchPlaylist(ctx, playlistURL)
	if err != nil {
		return respondError(r, userMessage(err))
	}
	if len(tracks) == 0 {
		return respondError(r, "That playlist has no playable tracks.")
	}

	if _, err := h.playback.EnqueueAll(ctx, usecases.EnqueueAllInput{
		GuildID:               guildID,
		UserID:                userID,
		NotificationChannelID: channelID,
		Tracks:                tracks,
	}); err != nil {
		return respondError(r, userMessage(err))
	}

	description := fmt.Sprintf("Queued **%d** tracks.", len(tracks))
	if len(tracks) < total {
		description = fmt.Sprintf("Queued **%d** of %d tracks, the rest are unavailable.",
			len(tracks), total)
	}

	return respondSuccess(r, description)
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid interaction data")
	}

	listing := h.queue.List(guildID)
	if listing.IsEmpty() {
		return respondSuccess(r, "The queue is empty.")
	}

	var lines []string
	if listing.CurrentTrack != nil {
		lines = append(lines, fmt.Sprintf("▶ **%s** (%s)",
			listing.CurrentTrack.Display(), listing.CurrentTrack.FormattedDuration()))
	}
	for idx, track := range listing.Tracks {
		if idx >= maxQueueListEntries {
			lines = append(lines, fmt.Sprintf("… and %d more", len(listing.Tracks)-idx))
			break
		}
		lines = append(lines, fmt.Sprintf("**%d.** %s (%s)",
			idx+1, track.Display(), track.FormattedDuration()))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Queue",
					Description: strings.Join(lines, "\n"),
					Color:       colorVKBlue,
				},
			},
		},
	})
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid interaction data")
	}

	output, err := h.playback.Skip(ctx, guildID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Skipped **%s**.", output.SkippedTrack.Display()))
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid interaction data")
	}

	output, err := h.playback.Stop(ctx, guildID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	description := "Stopped playback."
	if output.ClearedTracks > 0 {
		description = fmt.Sprintf("Stopped playback and cleared %d queued tracks.",
			output.ClearedTracks)
	}

	return respondSuccess(r, description)
}

// selectionButtons builds one row of numbered buttons for a selection
// session.
func selectionButtons(sessionID string, count int) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, count)
	for idx := 0; idx < count; idx++ {
		buttons = append(buttons, discordgo.Button{
			Label:    fmt.Sprintf("%d", idx+1),
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s:%s:%d", SelectionCustomIDPrefix, sessionID, idx),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// userMessage maps application errors to user-facing text. VK failures
// collapse to a generic "service unavailable" message per the
// propagation policy; state errors are reported as-is.
func userMessage(err error) string {
	switch {
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return "You need to be in a voice channel for that."
	case errors.Is(err, usecases.ErrNotConnected):
		return "I'm not connected to a voice channel."
	case errors.Is(err, usecases.ErrNotPlaying):
		return "Nothing is playing right now."
	case errors.Is(err, usecases.ErrSelectionClosed):
		return "That selection has expired."
	case errors.Is(err, usecases.ErrInvalidSelection):
		return "That's not one of the offered tracks."
	case errors.Is(err, infrastructure.ErrNoResults):
		return "No tracks found."
	case errors.Is(err, infrastructure.ErrInvalidURL):
		return "That doesn't look like a VK playlist link."
	case errors.Is(err, infrastructure.ErrNotFound):
		return "Couldn't find that playlist."
	case errors.Is(err, infrastructure.ErrRateLimited),
		errors.Is(err, infrastructure.ErrAuthFailed),
		errors.Is(err, infrastructure.ErrServiceUnavailable):
		return "The music service is currently unavailable, try again later."
	default:
		return "Something went wrong, try again later."
	}
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}
