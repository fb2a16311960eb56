package usecases

import (
	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// QueueListOutput contains the result of the QueueService List use case.
type QueueListOutput struct {
	// CurrentTrack is the track being streamed, nil while idle.
	CurrentTrack *domain.Track
	// Tracks are the pending tracks in play order.
	Tracks []domain.Track
}

// IsEmpty reports whether there is neither a current nor a pending track.
func (o *QueueListOutput) IsEmpty() bool {
	return o.CurrentTrack == nil && len(o.Tracks) == 0
}

// QueueService exposes read access to guild queues.
type QueueService struct {
	repo domain.PlayerStateRepository
}

// NewQueueService creates a new QueueService.
func NewQueueService(repo domain.PlayerStateRepository) *QueueService {
	return &QueueService{repo: repo}
}

// List returns a snapshot of the guild's current track and pending queue.
// A disconnected guild yields an empty listing rather than an error so the
// command layer can render "queue is empty" uniformly.
func (q *QueueService) List(guildID snowflake.ID) *QueueListOutput {
	state := q.repo.Get(guildID)
	if state == nil {
		return &QueueListOutput{}
	}

	return &QueueListOutput{
		CurrentTrack: state.CurrentTrack(),
		Tracks:       state.Queue.List(),
	}
}
