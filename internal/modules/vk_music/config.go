package vk_music

import "errors"

// Config holds the VK music module configuration.
type Config struct {
	VKLogin             string  `env:"VK_LOGIN"`
	VKPassword          string  `env:"VK_PASSWORD"`
	VKBypassAuth        bool    `env:"VK_BYPASS_AUTH"`
	VKBypassAccessToken string  `env:"VK_BYPASS_ACCESS_TOKEN"`
	VKRequestsPerSecond float64 `env:"VK_API_RPS" envDefault:"3"`

	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
}

// Validate checks that a VK auth path is configured: either a bypass
// token or account credentials.
func (c *Config) Validate() error {
	if c.VKBypassAuth {
		if c.VKBypassAccessToken == "" {
			return errors.New("VK_BYPASS_AUTH is set but VK_BYPASS_ACCESS_TOKEN is empty")
		}
		return nil
	}
	if c.VKLogin == "" || c.VKPassword == "" {
		return errors.New("VK_LOGIN and VK_PASSWORD are required unless VK_BYPASS_AUTH is set")
	}
	return nil
}

// BypassToken returns the pre-provisioned token, or "" when password
// auth is in use.
func (c *Config) BypassToken() string {
	if c.VKBypassAuth {
		return c.VKBypassAccessToken
	}
	return ""
}
