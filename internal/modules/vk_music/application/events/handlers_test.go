package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

type advanceRecorder struct {
	mu    sync.Mutex
	calls []snowflake.ID
	done  chan struct{}
}

func newAdvanceRecorder() *advanceRecorder {
	return &advanceRecorder{done: make(chan struct{}, 16)}
}

func (a *advanceRecorder) advance(_ context.Context, guildID snowflake.ID) error {
	a.mu.Lock()
	a.calls = append(a.calls, guildID)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *advanceRecorder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func (a *advanceRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-a.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for advance call")
	}
}

func TestEnqueueOnIdleTriggersPlayNext(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	playNext := newAdvanceRecorder()
	finishTrack := newAdvanceRecorder()
	handler := NewPlaybackEventHandler(playNext.advance, finishTrack.advance, bus)
	handler.Start(context.Background())
	defer handler.Stop()

	bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: 1, WasIdle: true})
	playNext.wait(t)

	if finishTrack.count() != 0 {
		t.Error("expected no finish-track call for an enqueue event")
	}
}

func TestEnqueueWhilePlayingIsIgnored(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	playNext := newAdvanceRecorder()
	finishTrack := newAdvanceRecorder()
	handler := NewPlaybackEventHandler(playNext.advance, finishTrack.advance, bus)
	handler.Start(context.Background())
	defer handler.Stop()

	bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: 1, WasIdle: false})
	bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: 1, WasIdle: true})
	playNext.wait(t)

	if playNext.count() != 1 {
		t.Errorf("expected 1 playNext call, got %d", playNext.count())
	}
}

func TestTrackEndReasonsDriveAdvance(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	playNext := newAdvanceRecorder()
	finishTrack := newAdvanceRecorder()
	handler := NewPlaybackEventHandler(playNext.advance, finishTrack.advance, bus)
	handler.Start(context.Background())
	defer handler.Stop()

	// Replaced and cleanup must not advance.
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, Reason: domain.TrackEndReplaced})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, Reason: domain.TrackEndCleanup})

	for _, reason := range []domain.TrackEndReason{
		domain.TrackEndFinished,
		domain.TrackEndLoadFailed,
		domain.TrackEndStopped,
	} {
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, Reason: reason})
		finishTrack.wait(t)
	}

	if finishTrack.count() != 3 {
		t.Errorf("expected 3 advancing end reasons, got %d", finishTrack.count())
	}
	if playNext.count() != 0 {
		t.Error("expected end events to go through finishTrack, not playNext")
	}
}
