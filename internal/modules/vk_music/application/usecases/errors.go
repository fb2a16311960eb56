package usecases

import "errors"

// Domain errors for the VK music module.
var (
	// ErrUserNotInVoice is returned when the requester is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrQueueEmpty is returned when the queue is empty.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrSelectionClosed is returned when selecting on a resolved or expired session.
	ErrSelectionClosed = errors.New("this selection is no longer active")

	// ErrInvalidSelection is returned for an out-of-range candidate index.
	ErrInvalidSelection = errors.New("invalid selection")
)
