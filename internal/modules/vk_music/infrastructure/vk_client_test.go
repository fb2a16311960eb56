package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type fakeAcquirer struct {
	token string
	err   error
	calls atomic.Int64
}

func (f *fakeAcquirer) AcquireToken(context.Context, VKCredentials) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, auth tokenAcquirer, bypassToken string) *VKMusicClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewVKMusicClient(VKClientConfig{
		Identity:          KateMobile,
		Credentials:       VKCredentials{Login: "user", Password: "pass"},
		Auth:              auth,
		BypassToken:       bypassToken,
		RequestsPerSecond: 1000,
		BaseURL:           server.URL,
	})
}

const searchResponse = `{"response":{"count":3,"items":[
	{"artist":"A","title":"one","duration":100,"url":"https://cs0.vkuseraudio.net/one.mp3"},
	{"artist":"B","title":"two","duration":200,"url":"https://cs0.vkuseraudio.net/two.mp3"},
	{"artist":"C","title":"three","duration":300,"url":"https://cs0.vkuseraudio.net/three.mp3"}
]}}`

func TestSearchManyPreservesCatalogOrder(t *testing.T) {
	var gotCount string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/method/audio.search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotCount = r.FormValue("count")
		w.Write([]byte(searchResponse))
	}, &fakeAcquirer{token: "tok"}, "")

	tracks, err := client.SearchMany(context.Background(), "query", 3)
	if err != nil {
		t.Fatalf("SearchMany failed: %v", err)
	}
	if gotCount != "3" {
		t.Errorf("expected count=3 in the request, got %q", gotCount)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	for i, title := range []string{"one", "two", "three"} {
		if tracks[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, tracks[i].Title)
		}
	}
}

func TestSearchManyEmptyResultIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"count":0,"items":[]}}`))
	}, &fakeAcquirer{token: "tok"}, "")

	tracks, err := client.SearchMany(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatalf("expected no error for an empty result, got %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("expected an empty slice, got %d tracks", len(tracks))
	}
}

func TestSearchFirstNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"count":0,"items":[]}}`))
	}, &fakeAcquirer{token: "tok"}, "")

	_, err := client.SearchFirst(context.Background(), "nothing")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestSearchAPIErrorMapsToServiceUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":{"error_code":5,"error_msg":"User authorization failed"}}`))
	}, &fakeAcquirer{token: "tok"}, "")

	_, err := client.SearchFirst(context.Background(), "query")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestFetchPlaylistFiltersUnavailableTracks(t *testing.T) {
	var gotOwner, gotAlbum string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/method/audio.get" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotOwner = r.FormValue("owner_id")
		gotAlbum = r.FormValue("album_id")
		w.Write([]byte(`{"response":{"count":3,"items":[
			{"artist":"A","title":"one","duration":100,"url":"https://cs0.vkuseraudio.net/one.mp3"},
			{"artist":"B","title":"gone","duration":200,"url":""},
			{"artist":"C","title":"three","duration":300,"url":"https://cs0.vkuseraudio.net/three.mp3"}
		]}}`))
	}, &fakeAcquirer{token: "tok"}, "")

	tracks, total, err := client.FetchPlaylist(context.Background(), "https://vk.com/audio_playlist-123_456")
	if err != nil {
		t.Fatalf("FetchPlaylist failed: %v", err)
	}
	if gotOwner != "-123" || gotAlbum != "456" {
		t.Errorf("expected owner_id=-123 album_id=456, got owner_id=%s album_id=%s", gotOwner, gotAlbum)
	}
	if total != 3 {
		t.Errorf("expected server total 3, got %d", total)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 playable tracks, got %d", len(tracks))
	}
	if tracks[0].Title != "one" || tracks[1].Title != "three" {
		t.Errorf("unexpected playable tracks: %v", tracks)
	}
}

func TestFetchPlaylistInvalidURLSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{}`))
	}, &fakeAcquirer{token: "tok"}, "")

	_, _, err := client.FetchPlaylist(context.Background(), "https://example.com/music_playlist-1_2")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
	if requests.Load() != 0 {
		t.Error("expected no network request for an invalid url")
	}
}

func TestFetchPlaylistAPIErrorMapsToNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":{"error_code":104,"error_msg":"Not found"}}`))
	}, &fakeAcquirer{token: "tok"}, "")

	_, _, err := client.FetchPlaylist(context.Background(), "https://vk.com/audio_playlist-123_456")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBypassTokenNeverCallsAuth(t *testing.T) {
	auth := &fakeAcquirer{token: "unused"}
	var gotToken string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.FormValue("access_token")
		w.Write([]byte(searchResponse))
	}, auth, "bypass-token")

	if _, err := client.SearchFirst(context.Background(), "query"); err != nil {
		t.Fatalf("SearchFirst failed: %v", err)
	}
	if _, err := client.SearchMany(context.Background(), "query", 2); err != nil {
		t.Fatalf("SearchMany failed: %v", err)
	}

	if auth.calls.Load() != 0 {
		t.Errorf("expected zero auth calls in bypass mode, got %d", auth.calls.Load())
	}
	if gotToken != "bypass-token" {
		t.Errorf("expected requests to carry the bypass token, got %q", gotToken)
	}
}

func TestTokenIsAcquiredLazilyOnce(t *testing.T) {
	auth := &fakeAcquirer{token: "lazy-token"}
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(searchResponse))
	}, auth, "")

	ctx := context.Background()
	if _, err := client.SearchFirst(ctx, "first"); err != nil {
		t.Fatalf("SearchFirst failed: %v", err)
	}
	if _, err := client.SearchFirst(ctx, "second"); err != nil {
		t.Fatalf("SearchFirst failed: %v", err)
	}

	if auth.calls.Load() != 1 {
		t.Errorf("expected a single lazy auth call, got %d", auth.calls.Load())
	}
}

func TestAuthFailurePropagates(t *testing.T) {
	auth := &fakeAcquirer{err: ErrRateLimited}
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(searchResponse))
	}, auth, "")

	_, err := client.SearchFirst(context.Background(), "query")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestRequestsCarryBaseFormFields(t *testing.T) {
	var form map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		form = map[string]string{
			"https":    r.FormValue("https"),
			"lang":     r.FormValue("lang"),
			"extended": r.FormValue("extended"),
			"v":        r.FormValue("v"),
		}
		w.Write([]byte(searchResponse))
	}, &fakeAcquirer{token: "tok"}, "")

	if _, err := client.SearchFirst(context.Background(), "query"); err != nil {
		t.Fatalf("SearchFirst failed: %v", err)
	}

	expected := map[string]string{"https": "1", "lang": "ru", "extended": "1", "v": "5.131"}
	for key, want := range expected {
		if form[key] != want {
			t.Errorf("expected %s=%s, got %q", key, want, form[key])
		}
	}
}
