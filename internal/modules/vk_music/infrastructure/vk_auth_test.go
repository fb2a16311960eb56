package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestAuthManager(t *testing.T, handler http.HandlerFunc) *AuthTokenManager {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewAuthTokenManager(KateMobile, server.URL)
}

func TestAcquireTokenExtractsAccessToken(t *testing.T) {
	var form map[string]string
	manager := newTestAuthManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		form = map[string]string{
			"grant_type": r.FormValue("grant_type"),
			"username":   r.FormValue("username"),
			"password":   r.FormValue("password"),
			"scope":      r.FormValue("scope"),
			"v":          r.FormValue("v"),
			"client_id":  r.FormValue("client_id"),
		}
		w.Write([]byte(`{"access_token":"the-token","expires_in":0,"user_id":1}`))
	})

	token, err := manager.AcquireToken(context.Background(), VKCredentials{Login: "user", Password: "pass"})
	if err != nil {
		t.Fatalf("AcquireToken failed: %v", err)
	}
	if token != "the-token" {
		t.Errorf("expected token %q, got %q", "the-token", token)
	}

	expected := map[string]string{
		"grant_type": "password",
		"username":   "user",
		"password":   "pass",
		"scope":      "audio,offline",
		"v":          "5.131",
		"client_id":  KateMobile.ClientID,
	}
	for key, want := range expected {
		if form[key] != want {
			t.Errorf("expected %s=%s, got %q", key, want, form[key])
		}
	}
}

func TestAcquireTokenFloodControl(t *testing.T) {
	manager := newTestAuthManager(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"9;Flood control","error_description":"Flood control: too many attempts"}`))
	})

	_, err := manager.AcquireToken(context.Background(), VKCredentials{Login: "user", Password: "pass"})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestAcquireTokenRejectedCredentials(t *testing.T) {
	manager := newTestAuthManager(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"invalid_client","error_description":"Username or password is incorrect"}`))
	})

	_, err := manager.AcquireToken(context.Background(), VKCredentials{Login: "user", Password: "wrong"})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestAcquireTokenMissingTokenField(t *testing.T) {
	manager := newTestAuthManager(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"user_id":1}`))
	})

	_, err := manager.AcquireToken(context.Background(), VKCredentials{Login: "user", Password: "pass"})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}
