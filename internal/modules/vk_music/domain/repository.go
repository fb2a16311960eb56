package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlayerStateRepository stores per-guild playback sessions.
// Absence of a state means the guild is disconnected.
type PlayerStateRepository interface {
	// Get returns the PlayerState for the given guild, or nil if not exists.
	Get(guildID snowflake.ID) *PlayerState

	// Save stores the PlayerState.
	Save(state *PlayerState)

	// Delete removes the PlayerState for the given guild.
	Delete(guildID snowflake.ID)
}
