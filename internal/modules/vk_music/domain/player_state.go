package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlayerState is the per-guild playback session: one voice connection,
// one queue, one playback flag. A guild without a PlayerState in the
// repository is disconnected; with a state it is connected, either idle
// or playing depending on isPlaybackActive.
type PlayerState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // voice channel the bot is connected to
	notificationChannelID snowflake.ID // text channel for notifications
	Queue                 Queue
	isPlaybackActive      bool
	currentTrack          *Track // track being streamed, nil while idle
}

// NewPlayerState creates a new PlayerState for the given guild and channels.
func NewPlayerState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		Queue:                 NewQueue(),
	}
}

// GuildID returns the guild ID. Never modified after initialization.
func (p *PlayerState) GuildID() snowflake.ID {
	return p.guildID
}

// VoiceChannelID returns the current voice channel ID.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID after a reconnect.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel used for notifications.
func (p *PlayerState) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// IsPlaying reports whether a track is currently being streamed.
func (p *PlayerState) IsPlaying() bool {
	return p.isPlaybackActive
}

// CurrentTrack returns the track being streamed, or nil while idle.
func (p *PlayerState) CurrentTrack() *Track {
	return p.currentTrack
}

// StartPlayback marks the session as playing the given track.
func (p *PlayerState) StartPlayback(track Track) {
	p.isPlaybackActive = true
	p.currentTrack = &track
}

// StopPlayback marks the session idle.
func (p *PlayerState) StopPlayback() {
	p.isPlaybackActive = false
	p.currentTrack = nil
}
