package ports

import (
	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// EventPublisher publishes playback events asynchronously.
type EventPublisher interface {
	PublishTrackEnqueued(event domain.TrackEnqueuedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishPlaybackStarted(event domain.PlaybackStartedEvent)
	PublishSessionEnded(event domain.SessionEndedEvent)
}
