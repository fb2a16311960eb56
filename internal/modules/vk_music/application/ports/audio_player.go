package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// AudioPlayer streams track source URLs into a guild's voice connection.
// Implementations emit a TrackEndedEvent when a stream ends for any reason.
type AudioPlayer interface {
	// Play starts streaming the track's source URL.
	Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error

	// Stop forcibly ends the current stream. The resulting end event
	// arrives asynchronously; callers must not assume state has changed
	// when Stop returns.
	Stop(ctx context.Context, guildID snowflake.ID) error
}
