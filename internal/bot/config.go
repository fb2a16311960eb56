package bot

import (
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// GuildID scopes slash command registration to a single guild when set.
	// Commands register globally when zero. Guild commands propagate
	// immediately, which makes this the right mode for debug deployments.
	GuildID snowflake.ID `env:"GUILD_ID"`

	// TrustedIDs is the allowlist of users permitted to run debug commands.
	TrustedIDs []snowflake.ID `env:"TRUSTED_IDS"`
}

// IsTrusted reports whether the user is on the trusted allowlist.
func (c *Config) IsTrusted(userID snowflake.ID) bool {
	return slices.Contains(c.TrustedIDs, userID)
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogConfig holds log file settings. Rotation is handled by the writer
// configured in main; an empty FilePath means logging goes to stdout.
type LogConfig struct {
	FilePath   string `env:"LOG_FILE_PATH"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
}

// LoadLogConfig loads log settings from environment variables.
func LoadLogConfig() (*LogConfig, error) {
	cfg := &LogConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
