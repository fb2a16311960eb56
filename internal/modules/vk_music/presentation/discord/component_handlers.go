package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/bulbex/bulbex/internal/modules/vk_music/application/usecases"
)

// ComponentHandlers routes message component interactions for selection
// buttons.
type ComponentHandlers struct {
	selection *usecases.SelectionService
}

// NewComponentHandlers creates new ComponentHandlers.
func NewComponentHandlers(selection *usecases.SelectionService) *ComponentHandlers {
	return &ComponentHandlers{
		selection: selection,
	}
}

// Handles reports whether the custom ID belongs to a selection button.
func (h *ComponentHandlers) Handles(customID string) bool {
	return strings.HasPrefix(customID, SelectionCustomIDPrefix+":")
}

// HandleSelection resolves a selection button press. The pressed
// message is updated in place: buttons are removed and the outcome is
// appended.
func (h *ComponentHandlers) HandleSelection(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	customID := i.MessageComponentData().CustomID

	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		slog.Warn("malformed selection custom ID", "custom_id", customID)
		return
	}
	sessionID := parts[1]
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		slog.Warn("malformed selection index", "custom_id", customID)
		return
	}

	output, err := h.selection.Select(context.Background(), usecases.SelectInput{
		SessionID: sessionID,
		Index:     index,
	})
	if err != nil {
		h.respondEphemeral(s, i, userMessage(err))
		if !errors.Is(err, usecases.ErrSelectionClosed) &&
			!errors.Is(err, usecases.ErrInvalidSelection) {
			slog.Error("failed to resolve selection", "session", sessionID, "error", err)
		}
		return
	}

	description := fmt.Sprintf("Added **%s** to the queue.", output.Track.Display())
	if output.Enqueue.WasPlaying {
		description = fmt.Sprintf("Added **%s** to the queue at position %d.",
			output.Track.Display(), output.Enqueue.Position)
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		slog.Error("failed to update selection message", "session", sessionID, "error", err)
	}
}

func (h *ComponentHandlers) respondEphemeral(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	message string,
) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
	if err != nil {
		slog.Error("failed to send ephemeral selection response", "error", err)
	}
}
