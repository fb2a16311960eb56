package discord

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/bot"
	"github.com/bulbex/bulbex/internal/modules/vk_music/application/usecases"
	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
	"github.com/bulbex/bulbex/internal/modules/vk_music/infrastructure"
)

func queueInteraction(guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: guildID,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "queue",
			},
		},
	}
}

func TestHandleQueueEmpty(t *testing.T) {
	repo := infrastructure.NewMemoryRepository()
	handlers := NewCommandHandlers(nil, usecases.NewQueueService(repo), nil, nil)

	responder := &bot.MockResponder{}
	if err := handlers.HandleQueue(nil, queueInteraction("100"), responder); err != nil {
		t.Fatalf("HandleQueue failed: %v", err)
	}

	if responder.LastResponse == nil || len(responder.LastResponse.Data.Embeds) == 0 {
		t.Fatal("expected an embed response")
	}
	if !strings.Contains(responder.LastResponse.Data.Embeds[0].Description, "empty") {
		t.Errorf("expected an empty-queue message, got %q",
			responder.LastResponse.Data.Embeds[0].Description)
	}
}

func TestHandleQueueListsCurrentAndPending(t *testing.T) {
	repo := infrastructure.NewMemoryRepository()
	state := domain.NewPlayerState(snowflake.ID(100), snowflake.ID(200), snowflake.ID(300))
	state.StartPlayback(domain.NewTrack("Artist", "current", 60, "https://example.com/current.mp3"))
	state.Queue.Enqueue(domain.NewTrack("Artist", "pending", 90, "https://example.com/pending.mp3"))
	repo.Save(state)

	handlers := NewCommandHandlers(nil, usecases.NewQueueService(repo), nil, nil)

	responder := &bot.MockResponder{}
	if err := handlers.HandleQueue(nil, queueInteraction("100"), responder); err != nil {
		t.Fatalf("HandleQueue failed: %v", err)
	}

	description := responder.LastResponse.Data.Embeds[0].Description
	if !strings.Contains(description, "current") || !strings.Contains(description, "pending") {
		t.Errorf("expected both tracks in the listing, got %q", description)
	}
}

func TestHandleSkipWhenDisconnected(t *testing.T) {
	repo := infrastructure.NewMemoryRepository()
	playback := usecases.NewPlaybackService(repo, nil, nil, nil, nil)
	handlers := NewCommandHandlers(playback, nil, nil, nil)

	interaction := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "100",
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "skip",
			},
		},
	}

	responder := &bot.MockResponder{}
	if err := handlers.HandleSkip(nil, interaction, responder); err != nil {
		t.Fatalf("HandleSkip failed: %v", err)
	}

	embed := responder.LastResponse.Data.Embeds[0]
	if embed.Color != colorError {
		t.Error("expected an error embed")
	}
	if !strings.Contains(embed.Description, "not connected") {
		t.Errorf("expected a not-connected message, got %q", embed.Description)
	}
}

func TestSelectionButtonsCarrySessionAndIndex(t *testing.T) {
	components := selectionButtons("session-id", 3)
	if len(components) != 1 {
		t.Fatalf("expected a single action row, got %d", len(components))
	}

	row, ok := components[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("expected an ActionsRow, got %T", components[0])
	}
	if len(row.Components) != 3 {
		t.Fatalf("expected 3 buttons, got %d", len(row.Components))
	}

	for idx, component := range row.Components {
		button, ok := component.(discordgo.Button)
		if !ok {
			t.Fatalf("expected a Button, got %T", component)
		}
		want := fmt.Sprintf("%s:session-id:%d", SelectionCustomIDPrefix, idx)
		if button.CustomID != want {
			t.Errorf("expected custom ID %q, got %q", want, button.CustomID)
		}
	}
}

func TestComponentHandlersRecognizeSelectionIDs(t *testing.T) {
	handlers := NewComponentHandlers(nil)

	if !handlers.Handles(SelectionCustomIDPrefix + ":abc:0") {
		t.Error("expected selection custom IDs to be handled")
	}
	if handlers.Handles("other_module_button:abc") {
		t.Error("expected foreign custom IDs to be ignored")
	}
}

func TestUserMessageCollapsesVKFailures(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{usecases.ErrUserNotInVoice, "voice channel"},
		{usecases.ErrNotPlaying, "Nothing is playing"},
		{infrastructure.ErrNoResults, "No tracks found"},
		{infrastructure.ErrInvalidURL, "playlist link"},
		{infrastructure.ErrRateLimited, "currently unavailable"},
		{infrastructure.ErrAuthFailed, "currently unavailable"},
		{infrastructure.ErrServiceUnavailable, "currently unavailable"},
	}

	for _, tc := range cases {
		if got := userMessage(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("userMessage(%v) = %q, expected it to contain %q", tc.err, got, tc.want)
		}
	}
}
