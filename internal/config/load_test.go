package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BOT_TOKEN", "DISCORD_TOKEN", "GUILD_ID", "PORT"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auditrelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
discord:
  token: from-file
  guild_id: "1289789596238086194"
audit:
  channel_name: audit-logistics
reconciler:
  delay: 250ms
  limit: 5
log:
  level: debug
`)
	t.Setenv("AUDITRELAY_RECONCILER__WINDOW", "30s")
	t.Setenv("AUDITRELAY_LOG__FORMAT", "text")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Discord.Token)
	assert.Equal(t, "1289789596238086194", cfg.Discord.GuildID)
	assert.Equal(t, "audit-logistics", cfg.Audit.ChannelName)
	assert.Equal(t, 250*time.Millisecond, cfg.Reconciler.Delay)
	assert.Equal(t, 5, cfg.Reconciler.Limit)
	assert.Equal(t, 30*time.Second, cfg.Reconciler.Window)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "#43c7c5", cfg.Audit.EmbedColor, "unset keys keep defaults")
	assert.Same(t, cfg, Get())
}

func TestLoad_LegacyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "legacy-token")
	t.Setenv("BOT_TOKEN", "bare")
	t.Setenv("GUILD_ID", "42")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "bare", cfg.Discord.Token)
	assert.Equal(t, "42", cfg.Discord.GuildID)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "discord: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Discord.Token = "t"
		cfg.Discord.GuildID = "1289789596238086194"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing token", func(c *Config) { c.Discord.Token = "" }},
		{"missing guild", func(c *Config) { c.Discord.GuildID = "" }},
		{"non numeric guild", func(c *Config) { c.Discord.GuildID = "lcsrc" }},
		{"missing channel", func(c *Config) { c.Audit.ChannelName = "" }},
		{"bad colour", func(c *Config) { c.Audit.EmbedColor = "teal" }},
		{"negative cache", func(c *Config) { c.Audit.MessageCacheSize = -1 }},
		{"negative delay", func(c *Config) { c.Reconciler.Delay = -time.Second }},
		{"limit too large", func(c *Config) { c.Reconciler.Limit = 101 }},
		{"zero window", func(c *Config) { c.Reconciler.Window = 0 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAuditConfig_Color(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"#43c7c5", 0x43c7c5, false},
		{"0x43C7C5", 0x43c7c5, false},
		{"ffffff", 0xffffff, false},
		{"1000000", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := AuditConfig{EmbedColor: tt.in}.Color()
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
