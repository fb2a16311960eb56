package infrastructure

import "errors"

var (
	// ErrAuthFailed means the VK OAuth endpoint rejected the credentials.
	ErrAuthFailed = errors.New("vk authentication failed")

	// ErrRateLimited means VK flood control kicked in. Callers must not
	// retry immediately.
	ErrRateLimited = errors.New("vk rate limited")

	// ErrNoResults means a search matched nothing.
	ErrNoResults = errors.New("no tracks found")

	// ErrInvalidURL means a playlist URL could not be parsed.
	ErrInvalidURL = errors.New("invalid playlist url")

	// ErrNotFound means VK reported an error for a playlist request.
	ErrNotFound = errors.New("playlist not found")

	// ErrServiceUnavailable wraps unexpected remote failures.
	ErrServiceUnavailable = errors.New("vk service unavailable")
)
