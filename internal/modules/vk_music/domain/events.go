package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a stream ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to completion.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the source could not be streamed.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the stream was forcibly stopped (skip or stop).
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another track replaced this one.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the player was torn down.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue reports whether this end reason should pull the next
// queued track. Stopped advances too: skip and stop rely on the end event
// to drive the session forward.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed || r == TrackEndStopped
}

// TrackEnqueuedEvent is published when a track is appended to a guild queue.
type TrackEnqueuedEvent struct {
	GuildID snowflake.ID
	Track   Track
	WasIdle bool // true if nothing was playing at enqueue time
}

// TrackEndedEvent is published by the media player when a stream ends.
// This is the sole driver of queue progression.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  TrackEndReason
}

// PlaybackStartedEvent is published when a track starts streaming.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 Track
	NotificationChannelID snowflake.ID
}

// SessionEndedEvent is published when a drained queue disconnects the session.
type SessionEndedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
}
