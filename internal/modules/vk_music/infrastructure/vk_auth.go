package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOAuthBaseURL = "https://oauth.vk.com"

const vkAPIVersion = "5.131"

// ClientIdentity identifies the calling application to VK.
type ClientIdentity struct {
	UserAgent    string
	ClientID     string
	ClientSecret string
}

// KateMobile is an identity whose client id is whitelisted for the audio
// API methods.
var KateMobile = ClientIdentity{
	UserAgent:    "KateMobileAndroid/56 lite-460 (Android 4.4.2; SDK 19; x86; unknown Android SDK built for x86; en)",
	ClientID:     "2685278",
	ClientSecret: "lxhD8OD7dMsqtXIm5IUY",
}

// VKCredentials is a VK account login and password, used only to mint
// access tokens.
type VKCredentials struct {
	Login    string
	Password string
}

// AuthTokenManager mints VK access tokens through the password grant.
// Each call opens its own HTTP client; auth calls are rare enough that
// connection reuse is not worth carrying.
type AuthTokenManager struct {
	identity ClientIdentity
	baseURL  string
}

// NewAuthTokenManager creates a new AuthTokenManager. An empty baseURL
// selects the production VK OAuth endpoint.
func NewAuthTokenManager(identity ClientIdentity, baseURL string) *AuthTokenManager {
	if baseURL == "" {
		baseURL = defaultOAuthBaseURL
	}
	return &AuthTokenManager{
		identity: identity,
		baseURL:  baseURL,
	}
}

type oauthResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AcquireToken performs the password grant and returns the access token.
// Flood control responses map to ErrRateLimited, everything else the
// endpoint rejects maps to ErrAuthFailed.
func (m *AuthTokenManager) AcquireToken(ctx context.Context, creds VKCredentials) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", m.identity.ClientID)
	form.Set("client_secret", m.identity.ClientSecret)
	form.Set("username", creds.Login)
	form.Set("password", creds.Password)
	form.Set("scope", "audio,offline")
	form.Set("v", vkAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", m.identity.UserAgent)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read auth response: %w", err)
	}

	var parsed oauthResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}

	if parsed.Error != "" {
		remote := parsed.Error
		if parsed.ErrorDescription != "" {
			remote += ": " + parsed.ErrorDescription
		}
		if strings.Contains(remote, "Flood control") {
			return "", fmt.Errorf("%w: %s", ErrRateLimited, remote)
		}
		return "", fmt.Errorf("%w: %s", ErrAuthFailed, remote)
	}

	if parsed.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access token", ErrAuthFailed)
	}

	return parsed.AccessToken, nil
}
