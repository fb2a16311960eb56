package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/bulbex/bulbex/internal/modules/vk_music/application/ports"
	"github.com/bulbex/bulbex/internal/modules/vk_music/domain"
)

const (
	defaultAPIBaseURL    = "https://api.vk.com"
	defaultSearchLimit   = 5
	playlistRequestLimit = 1000
)

// DefaultRequestsPerSecond throttles catalog calls below VK's flood
// control threshold.
const DefaultRequestsPerSecond = 3

type tokenAcquirer interface {
	AcquireToken(ctx context.Context, creds VKCredentials) (string, error)
}

// VKClientConfig configures a VKMusicClient.
type VKClientConfig struct {
	Identity    ClientIdentity
	Credentials VKCredentials
	Auth        tokenAcquirer

	// BypassToken seeds the token cell with a pre-provisioned token.
	// When set, the auth manager is never called.
	BypassToken string

	// RequestsPerSecond caps the catalog request rate. Non-positive
	// values fall back to DefaultRequestsPerSecond.
	RequestsPerSecond float64

	// BaseURL overrides the production API endpoint, for tests.
	BaseURL string
}

// VKMusicClient queries the VK audio catalog. Safe for concurrent use:
// requests are independent, and the shared token cell swaps atomically
// with idempotent lazy refill on concurrent first use.
type VKMusicClient struct {
	identity   ClientIdentity
	creds      VKCredentials
	auth       tokenAcquirer
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string

	token atomic.Pointer[string]
}

var _ ports.TrackSearcher = (*VKMusicClient)(nil)

// NewVKMusicClient creates a new VKMusicClient.
func NewVKMusicClient(config VKClientConfig) *VKMusicClient {
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	client := &VKMusicClient{
		identity:   config.Identity,
		creds:      config.Credentials,
		auth:       config.Auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    baseURL,
	}

	if config.BypassToken != "" {
		token := config.BypassToken
		client.token.Store(&token)
	}

	return client
}

type vkTrackItem struct {
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	URL      string `json:"url"`
}

type vkAPIResponse struct {
	Response *struct {
		Count int           `json:"count"`
		Items []vkTrackItem `json:"items"`
	} `json:"response"`
	Error json.RawMessage `json:"error"`
}

// SearchFirst returns the best match for the query.
func (c *VKMusicClient) SearchFirst(ctx context.Context, query string) (domain.Track, error) {
	items, err := c.search(ctx, query, 1)
	if err != nil {
		return domain.Track{}, err
	}
	if len(items) == 0 {
		return domain.Track{}, fmt.Errorf("%w: %q", ErrNoResults, query)
	}
	return itemToTrack(items[0]), nil
}

// SearchMany returns up to limit matches in catalog order. No matches is
// an empty slice, not an error.
func (c *VKMusicClient) SearchMany(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	items, err := c.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}

	tracks := make([]domain.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, itemToTrack(item))
	}
	return tracks, nil
}

// FetchPlaylist resolves a vk.com playlist URL into its playable tracks.
// Unavailable tracks are skipped but count toward the returned total.
func (c *VKMusicClient) FetchPlaylist(ctx context.Context, playlistURL string) ([]domain.Track, int, error) {
	ref, err := domain.ParsePlaylistURL(playlistURL)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	form := url.Values{}
	form.Set("count", strconv.Itoa(playlistRequestLimit))
	form.Set("owner_id", ref.OwnerID)
	form.Set("album_id", ref.PlaylistID)

	parsed, err := c.call(ctx, "audio.get", form)
	if err != nil {
		return nil, 0, err
	}
	if parsed.Error != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, string(parsed.Error))
	}
	if parsed.Response == nil {
		return nil, 0, fmt.Errorf("%w: malformed playlist response", ErrServiceUnavailable)
	}

	tracks := make([]domain.Track, 0, len(parsed.Response.Items))
	for _, item := range parsed.Response.Items {
		if item.URL == "" {
			continue
		}
		tracks = append(tracks, itemToTrack(item))
	}

	return tracks, parsed.Response.Count, nil
}

func (c *VKMusicClient) search(ctx context.Context, query string, count int) ([]vkTrackItem, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("count", strconv.Itoa(count))
	form.Set("offset", "0")
	form.Set("sort", "0")
	form.Set("autocomplete", "1")

	parsed, err := c.call(ctx, "audio.search", form)
	if err != nil {
		return nil, err
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, string(parsed.Error))
	}
	if parsed.Response == nil {
		return nil, fmt.Errorf("%w: malformed search response", ErrServiceUnavailable)
	}

	return parsed.Response.Items, nil
}

// call issues one catalog API request. A missing token is acquired
// lazily first; a token that goes stale mid-flight is not retried, the
// API error propagates to the caller.
func (c *VKMusicClient) call(ctx context.Context, method string, form url.Values) (*vkAPIResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	form.Set("access_token", token)
	form.Set("https", "1")
	form.Set("lang", "ru")
	form.Set("extended", "1")
	form.Set("v", vkAPIVersion)

	endpoint := c.baseURL + "/method/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.identity.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	var parsed vkAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s response: %v", ErrServiceUnavailable, method, err)
	}

	return &parsed, nil
}

// ensureToken returns the held token, acquiring one if the cell is
// empty. Concurrent first-use refills race benignly, the refill is
// idempotent and last write wins.
func (c *VKMusicClient) ensureToken(ctx context.Context) (string, error) {
	if token := c.token.Load(); token != nil {
		return *token, nil
	}

	if c.auth == nil {
		return "", fmt.Errorf("%w: no auth manager and no bypass token", ErrAuthFailed)
	}

	token, err := c.auth.AcquireToken(ctx, c.creds)
	if err != nil {
		return "", err
	}
	c.token.Store(&token)

	return token, nil
}

func itemToTrack(item vkTrackItem) domain.Track {
	return domain.NewTrack(item.Artist, item.Title, item.Duration, item.URL)
}
