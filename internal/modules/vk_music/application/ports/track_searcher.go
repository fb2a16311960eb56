package ports

import (
	"context"

	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

// TrackSearcher queries the VK music catalog.
type TrackSearcher interface {
	// SearchFirst returns the best match for the query.
	SearchFirst(ctx context.Context, query string) (domain.Track, error)

	// SearchMany returns up to limit matches in the order the catalog
	// returned them. An empty result is not an error.
	SearchMany(ctx context.Context, query string, limit int) ([]domain.Track, error)

	// FetchPlaylist resolves a vk.com playlist URL into its playable
	// tracks plus the server-reported total count (which includes
	// unavailable tracks that were filtered out).
	FetchPlaylist(ctx context.Context, playlistURL string) ([]domain.Track, int, error)
}
