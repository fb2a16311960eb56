package domain

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidPlaylistURL is returned when a playlist URL does not belong to
// vk.com or does not carry an owner/playlist ID pair.
var ErrInvalidPlaylistURL = errors.New("invalid VK playlist URL")

// VK playlist paths carry "<owner>_<playlist>" where the owner ID may be
// negative for community-owned playlists, e.g. /music/playlist/-123_456
// or /audio_playlist-123_456.
var (
	playlistOwnerPattern = regexp.MustCompile(`-?\d+_`)
	playlistIDPattern    = regexp.MustCompile(`_(\d+)`)
)

// PlaylistRef identifies a VK playlist by its owner and playlist IDs.
// IDs stay strings: they are only ever echoed back to the API.
type PlaylistRef struct {
	OwnerID    string
	PlaylistID string
}

// ParsePlaylistURL extracts a PlaylistRef from a vk.com playlist URL.
func ParsePlaylistURL(rawURL string) (PlaylistRef, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PlaylistRef{}, ErrInvalidPlaylistURL
	}

	if !strings.Contains(u.Host, "vk.com") {
		return PlaylistRef{}, ErrInvalidPlaylistURL
	}

	if u.Path == "" {
		return PlaylistRef{}, ErrInvalidPlaylistURL
	}

	owner := playlistOwnerPattern.FindString(u.Path)
	id := playlistIDPattern.FindStringSubmatch(u.Path)
	if owner == "" || id == nil {
		return PlaylistRef{}, ErrInvalidPlaylistURL
	}

	return PlaylistRef{
		OwnerID:    strings.TrimSuffix(owner, "_"),
		PlaylistID: id[1],
	}, nil
}
