package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/application/ports"
	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Track                 domain.Track
}

// EnqueueOutput contains the result of the Enqueue use case.
type EnqueueOutput struct {
	// Position is the track's place in the queue after insertion (1-based).
	Position int
	// WasPlaying is true when a stream was already active, meaning the
	// track was queued behind it rather than started.
	WasPlaying bool
}

// EnqueueAllInput contains the input for the EnqueueAll use case.
type EnqueueAllInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Tracks                []domain.Track
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack domain.Track
}

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	ClearedTracks int
}

// PlaybackService is the per-guild playback state machine. Each guild has
// its own lock serializing command handlers against the event-driven
// advance path; sessions in different guilds never block each other, even
// while one guild waits on a voice handshake or a stream start.
type PlaybackService struct {
	repo            domain.PlayerStateRepository
	audioPlayer     ports.AudioPlayer
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	publisher       ports.EventPublisher

	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	repo domain.PlayerStateRepository,
	audioPlayer ports.AudioPlayer,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	publisher ports.EventPublisher,
) *PlaybackService {
	return &PlaybackService{
		repo:            repo,
		audioPlayer:     audioPlayer,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		publisher:       publisher,
		locks:           make(map[snowflake.ID]*sync.Mutex),
	}
}

// guildLock returns the guild's lock, creating it on first use. Entries
// are never removed: a waiter already holds the pointer, so dropping the
// map entry could hand two goroutines different locks for one guild.
func (p *PlaybackService) guildLock(guildID snowflake.ID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[guildID] = lock
	}
	return lock
}

// Enqueue connects to the requester's voice channel if needed and appends
// the track to the guild queue. When the player is idle the published
// TrackEnqueued event triggers playback.
func (p *PlaybackService) Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error) {
	lock := p.guildLock(input.GuildID)
	lock.Lock()
	defer lock.Unlock()

	state, err := p.ensureConnected(ctx, input.GuildID, input.UserID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	wasPlaying := state.IsPlaying()
	state.Queue.Enqueue(input.Track)

	if p.publisher != nil {
		p.publisher.PublishTrackEnqueued(domain.TrackEnqueuedEvent{
			GuildID: input.GuildID,
			Track:   input.Track,
			WasIdle: !wasPlaying,
		})
	}

	return &EnqueueOutput{
		Position:   state.Queue.Len(),
		WasPlaying: wasPlaying,
	}, nil
}

// EnqueueAll appends several tracks at once (playlist import).
// Playback starts from the first track if the player was idle.
func (p *PlaybackService) EnqueueAll(ctx context.Context, input EnqueueAllInput) (*EnqueueOutput, error) {
	if len(input.Tracks) == 0 {
		return nil, ErrQueueEmpty
	}

	lock := p.guildLock(input.GuildID)
	lock.Lock()
	defer lock.Unlock()

	state, err := p.ensureConnected(ctx, input.GuildID, input.UserID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	wasPlaying := state.IsPlaying()
	for _, track := range input.Tracks {
		state.Queue.Enqueue(track)
	}

	if p.publisher != nil {
		p.publisher.PublishTrackEnqueued(domain.TrackEnqueuedEvent{
			GuildID: input.GuildID,
			Track:   input.Tracks[0],
			WasIdle: !wasPlaying,
		})
	}

	return &EnqueueOutput{
		Position:   state.Queue.Len(),
		WasPlaying: wasPlaying,
	}, nil
}

// ensureConnected resolves the requester's voice channel and makes sure the
// bot is connected to it, reconnecting if it sits in a different channel.
// Callers must hold the guild lock.
func (p *PlaybackService) ensureConnected(
	ctx context.Context,
	guildID, userID, notificationChannelID snowflake.ID,
) (*domain.PlayerState, error) {
	userChannel, err := p.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return nil, err
	}
	if userChannel == 0 {
		return nil, ErrUserNotInVoice
	}

	state := p.repo.Get(guildID)
	if state == nil {
		if err := p.voiceConnection.JoinChannel(ctx, guildID, userChannel); err != nil {
			return nil, err
		}
		state = domain.NewPlayerState(guildID, userChannel, notificationChannelID)
		p.repo.Save(state)
		return state, nil
	}

	if state.VoiceChannelID() != userChannel {
		// Follow the requester. The queue survives the move.
		if err := p.voiceConnection.JoinChannel(ctx, guildID, userChannel); err != nil {
			return nil, err
		}
		state.SetVoiceChannelID(userChannel)
	}
	state.SetNotificationChannelID(notificationChannelID)

	return state, nil
}

// PlayNext advances the session: pops the queue head and streams it, or
// disconnects when the queue is drained. No-op while a stream is active,
// which makes it safe to call from concurrent enqueues. Queue progression
// is otherwise driven solely by track-end events (via CompleteTrack).
func (p *PlaybackService) PlayNext(ctx context.Context, guildID snowflake.ID) error {
	lock := p.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	return p.playNextLocked(ctx, guildID)
}

// CompleteTrack handles a track-end event: marks the session idle and
// advances to the next queued track.
func (p *PlaybackService) CompleteTrack(ctx context.Context, guildID snowflake.ID) error {
	lock := p.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	state := p.repo.Get(guildID)
	if state == nil {
		return nil
	}
	state.StopPlayback()

	return p.playNextLocked(ctx, guildID)
}

func (p *PlaybackService) playNextLocked(ctx context.Context, guildID snowflake.ID) error {
	state := p.repo.Get(guildID)
	if state == nil {
		return nil
	}

	if state.IsPlaying() {
		// Re-entry guard: a stream is active, the end event will advance.
		return nil
	}

	next := state.Queue.PopNext()
	if next == nil {
		return p.endSessionLocked(ctx, state, true)
	}

	if err := p.audioPlayer.Play(ctx, guildID, *next); err != nil {
		state.StopPlayback()
		return err
	}
	state.StartPlayback(*next)

	slog.Info("started track",
		"guild", guildID,
		"track", next.Display(),
	)

	if p.publisher != nil {
		p.publisher.PublishPlaybackStarted(domain.PlaybackStartedEvent{
			GuildID:               guildID,
			Track:                 *next,
			NotificationChannelID: state.NotificationChannelID(),
		})
	}

	return nil
}

// endSessionLocked leaves the voice channel and drops the session state.
// The session-ended notification is suppressed for silent teardowns
// (selection timeouts).
func (p *PlaybackService) endSessionLocked(ctx context.Context, state *domain.PlayerState, notify bool) error {
	guildID := state.GuildID()

	if err := p.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
		return err
	}
	p.repo.Delete(guildID)

	slog.Info("playback session ended", "guild", guildID)

	if notify && p.publisher != nil {
		p.publisher.PublishSessionEnded(domain.SessionEndedEvent{
			GuildID:               guildID,
			NotificationChannelID: state.NotificationChannelID(),
		})
	}

	return nil
}

// Skip forcibly stops the current stream. The resulting end event pulls
// the next queued track; state does not change before it arrives.
func (p *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*SkipOutput, error) {
	lock := p.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	state := p.repo.Get(guildID)
	if state == nil {
		return nil, ErrNotConnected
	}

	current := state.CurrentTrack()
	if !state.IsPlaying() || current == nil {
		return nil, ErrNotPlaying
	}

	if err := p.audioPlayer.Stop(ctx, guildID); err != nil {
		return nil, err
	}

	return &SkipOutput{SkippedTrack: *current}, nil
}

// Stop clears the queue and forcibly stops the current stream. The
// disconnect happens when the end event finds the drained queue; Stop
// itself does not tear the connection down.
func (p *PlaybackService) Stop(ctx context.Context, guildID snowflake.ID) (*StopOutput, error) {
	lock := p.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	state := p.repo.Get(guildID)
	if state == nil {
		return nil, ErrNotConnected
	}

	cleared := state.Queue.Len()
	state.Queue.Clear()

	if state.IsPlaying() {
		if err := p.audioPlayer.Stop(ctx, guildID); err != nil {
			return nil, err
		}
	}

	return &StopOutput{ClearedTracks: cleared}, nil
}

// IsConnectedIdle reports whether the guild has a session that is not
// currently streaming. Used by selection timeouts to decide on disconnect.
func (p *PlaybackService) IsConnectedIdle(guildID snowflake.ID) bool {
	lock := p.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	state := p.repo.Get(guildID)
	return state != nil && !state.IsPlaying()
}

// Disconnect leaves the voice channel and drops the session regardless of
// queue contents. Used by selection timeouts.
func (p *PlaybackService) Disconnect(ctx context.Context, guildID snowflake.ID) error {
	lock := p.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	state := p.repo.Get(guildID)
	if state == nil {
		return nil
	}

	return p.endSessionLocked(ctx, state, false)
}
