package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// AdvanceFunc pulls the next queued track, disconnecting when the queue
// is empty.
type AdvanceFunc func(ctx context.Context, guildID snowflake.ID) error

// PlaybackEventHandler listens for TrackEnqueued and TrackEnded events
// and drives queue progression. Within one guild the advance calls are
// strictly sequenced by the end-event chain; the playing-state guard in
// playNext prevents double-starts.
type PlaybackEventHandler struct {
	playNext    AdvanceFunc // guarded advance: no-op while a stream is active
	finishTrack AdvanceFunc // marks the stream ended, then advances
	bus         *Bus

	wg   sync.WaitGroup
	done chan struct{}
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(playNext, finishTrack AdvanceFunc, bus *Bus) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playNext:    playNext,
		finishTrack: finishTrack,
		bus:         bus,
		done:        make(chan struct{}),
	}
}

// Start begins listening for events in background goroutines.
func (h *PlaybackEventHandler) Start(ctx context.Context) {
	h.wg.Add(2)

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.TrackEnqueued():
				if !ok {
					return
				}
				h.handleTrackEnqueued(ctx, event)
			}
		}
	}()

	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case event, ok := <-h.bus.TrackEnded():
				if !ok {
					return
				}
				h.handleTrackEnded(ctx, event)
			}
		}
	}()

	slog.Debug("playback event handler started")
}

// Stop stops the event handler and waits for goroutines to finish.
func (h *PlaybackEventHandler) Stop() {
	close(h.done)
	h.wg.Wait()
	slog.Debug("playback event handler stopped")
}

func (h *PlaybackEventHandler) handleTrackEnqueued(ctx context.Context, event domain.TrackEnqueuedEvent) {
	// Only start playback if the player was idle at enqueue time.
	// playNext re-checks the playing flag, so concurrent enqueues
	// cannot start a second stream.
	if !event.WasIdle {
		slog.Debug("track enqueued while playing, left in queue",
			"guild", event.GuildID,
			"track", event.Track.Display(),
		)
		return
	}

	if err := h.playNext(ctx, event.GuildID); err != nil {
		slog.Error("failed to start playback after enqueue",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if !event.Reason.ShouldAdvanceQueue() {
		slog.Debug("track ended without advancing queue",
			"guild", event.GuildID,
			"reason", event.Reason,
		)
		return
	}

	slog.Debug("track ended, advancing queue",
		"guild", event.GuildID,
		"reason", event.Reason,
	)

	if err := h.finishTrack(ctx, event.GuildID); err != nil {
		slog.Error("failed to advance queue after track end",
			"guild", event.GuildID,
			"error", err,
		)
	}
}
