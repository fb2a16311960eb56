package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection manages the bot's voice channel membership.
type VoiceConnection interface {
	// JoinChannel connects to a voice channel, switching channels if
	// already connected elsewhere in the same guild.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects from the guild's voice channel.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}
