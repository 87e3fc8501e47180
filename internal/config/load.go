package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "AUDITRELAY_"

type Config struct {
	Discord    DiscordConfig    `koanf:"discord"`
	Audit      AuditConfig      `koanf:"audit"`
	Reconciler ReconcilerConfig `koanf:"reconciler"`
	HTTP       HTTPConfig       `koanf:"http"`
	Watchdog   WatchdogConfig   `koanf:"watchdog"`
	Log        LogConfig        `koanf:"log"`
}

type DiscordConfig struct {
	Token   string `koanf:"token"`
	GuildID string `koanf:"guild_id"`
	// Presence is shown as "<Presence> | Audit Logger".
	Presence           string `koanf:"presence"`
	LeaveForeignGuilds bool   `koanf:"leave_foreign_guilds"`
}

type AuditConfig struct {
	ChannelName  string `koanf:"channel_name"`
	ChannelTopic string `koanf:"channel_topic"`
	EmbedColor   string `koanf:"embed_color"`
	ImageURL     string `koanf:"image_url"`
	// MessageCacheSize bounds the per-channel message cache used for
	// deleted and edited message content.
	MessageCacheSize int `koanf:"message_cache_size"`
}

type ReconcilerConfig struct {
	Delay  time.Duration `koanf:"delay"`
	Limit  int           `koanf:"limit"`
	Window time.Duration `koanf:"window"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type WatchdogConfig struct {
	Interval   time.Duration `koanf:"interval"`
	StaleAfter time.Duration `koanf:"stale_after"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when missing), then AUDITRELAY_* variables, then the bare
// BOT_TOKEN, DISCORD_TOKEN, GUILD_ID and PORT variables. A .env file in
// the working directory is read first and never overrides the real
// environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// AUDITRELAY_DISCORD__GUILD_ID -> discord.guild_id
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyLegacyEnv(cfg)
	return cfg, nil
}

func applyLegacyEnv(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if guildID := os.Getenv("GUILD_ID"); guildID != "" {
		cfg.Discord.GuildID = guildID
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
}

func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			Presence:           "LCSRC Utilities",
			LeaveForeignGuilds: true,
		},
		Audit: AuditConfig{
			ChannelName:      "「📄」audit-logistics",
			ChannelTopic:     "LCSRC Utilities Audit Logger",
			EmbedColor:       "#43c7c5",
			ImageURL:         "https://i.imgur.com/0oNYYxK.png",
			MessageCacheSize: 500,
		},
		Reconciler: ReconcilerConfig{
			Delay:  500 * time.Millisecond,
			Limit:  10,
			Window: 15 * time.Second,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Watchdog: WatchdogConfig{
			Interval:   10 * time.Second,
			StaleAfter: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks that the configuration can start a session.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is required (BOT_TOKEN or %sDISCORD__TOKEN)", EnvPrefix)
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("discord guild_id is required")
	}
	if _, err := strconv.ParseUint(c.Discord.GuildID, 10, 64); err != nil {
		return fmt.Errorf("invalid guild_id %q: %w", c.Discord.GuildID, err)
	}
	if c.Audit.ChannelName == "" {
		return fmt.Errorf("audit channel_name is required")
	}
	if _, err := c.Audit.Color(); err != nil {
		return err
	}
	if c.Audit.MessageCacheSize < 0 {
		return fmt.Errorf("audit message_cache_size must be non-negative")
	}
	if c.Reconciler.Delay < 0 {
		return fmt.Errorf("reconciler delay must be non-negative")
	}
	if c.Reconciler.Limit < 1 || c.Reconciler.Limit > 100 {
		return fmt.Errorf("reconciler limit must be between 1 and 100")
	}
	if c.Reconciler.Window <= 0 {
		return fmt.Errorf("reconciler window must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: must be json or text", c.Log.Format)
	}
	return nil
}

// Color parses the embed colour, accepting "#43c7c5", "0x43c7c5" or "43c7c5".
func (a AuditConfig) Color() (int, error) {
	s := strings.TrimSpace(a.EmbedColor)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || n > 0xffffff {
		return 0, fmt.Errorf("invalid embed_color %q", a.EmbedColor)
	}
	return int(n), nil
}
