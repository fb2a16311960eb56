package ports

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// NotificationSender renders playback events as messages in text channels.
type NotificationSender interface {
	// SendNowPlaying announces the track that just started streaming.
	SendNowPlaying(channelID snowflake.ID, track domain.Track) error

	// SendSessionEnded announces that the queue drained and the bot left.
	SendSessionEnded(channelID snowflake.ID) error
}
