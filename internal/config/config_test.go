package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
bot:
  prefix: "?"
  description: "Neko reactions"
cooldown:
  global: 45
reactions:
  pat:
    triggers:
      text: pat
    aliases: [pet, pats]
  hug:
    triggers: hug
    aliases: [hugs, cuddle]
  trap:
    triggers:
      text: trap
    hidden: true
apis:
  nekos_life:
    base_url: https://nekos.life/api/v2
    endpoints:
      pat: /img/pat
      hug: /img/hug
  nekos_best:
    base_url: https://nekos.best/api/v2
    url_field: results.0.url
    endpoints:
      pat: /pat
  gallery:
    base_url: https://example.com
    format: html
    selector: meta[property="og:image"]
    attr: content
    endpoints:
      hug: /hug
http:
  timeout: 3s
`

func TestParseKeepsDocumentOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.Bot.Prefix)
	assert.Equal(t, "Neko reactions", cfg.Bot.Description)
	assert.Equal(t, 45*time.Second, cfg.MuteDuration())
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)

	assert.Equal(t, []string{"pat", "hug", "trap"}, cfg.Reactions.Types())
	assert.Equal(t, []string{"pat", "pet", "pats"}, cfg.Reactions[0].Words())
	assert.Equal(t, "hug", cfg.Reactions[1].Triggers.Text, "scalar trigger shorthand")
	assert.True(t, cfg.Reactions[2].Hidden)

	require.Len(t, cfg.APIs, 3)
	assert.Equal(t, "nekos_life", cfg.APIs[0].Name)
	assert.Equal(t, FormatJSON, cfg.APIs[0].Format)
	assert.Equal(t, "url", cfg.APIs[0].URLField)
	assert.Equal(t, "results.0.url", cfg.APIs[1].URLField)
	assert.Equal(t, FormatHTML, cfg.APIs[2].Format)
	assert.Empty(t, cfg.APIs[2].URLField)

	path, ok := cfg.APIs[0].Endpoint("hug")
	assert.True(t, ok)
	assert.Equal(t, "/img/hug", path)
	_, ok = cfg.APIs[1].Endpoint("hug")
	assert.False(t, ok)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
reactions:
  pat:
    triggers: {text: pat}
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultPrefix, cfg.Bot.Prefix)
	assert.Equal(t, 30*time.Second, cfg.MuteDuration())
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.UserAgent)
	assert.Empty(t, cfg.Database.Path)
	assert.Empty(t, cfg.APIs)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "no reactions",
			yaml:    "bot: {prefix: '!'}",
			wantErr: ErrNoReactions,
		},
		{
			name:    "empty prefix",
			yaml:    "bot: {prefix: ' '}\nreactions: {pat: {triggers: pat}}",
			wantErr: ErrEmptyPrefix,
		},
		{
			name:    "negative cooldown",
			yaml:    "cooldown: {global: -1}\nreactions: {pat: {triggers: pat}}",
			wantErr: ErrInvalidCooldown,
		},
		{
			name:    "cooldown longer than a year",
			yaml:    "cooldown: {global: 9000000000}\nreactions: {pat: {triggers: pat}}",
			wantErr: ErrInvalidCooldown,
		},
		{
			name:    "unknown format",
			yaml:    "reactions: {pat: {triggers: pat}}\napis: {x: {base_url: 'http://x', format: xml}}",
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "html without selector",
			yaml:    "reactions: {pat: {triggers: pat}}\napis: {x: {base_url: 'http://x', format: html}}",
			wantErr: ErrMissingSelector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("reactions: [pat, hug]"))
	assert.Error(t, err)

	_, err = Parse([]byte("bot: {prefix: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("NEKOBOT_LOG_LEVEL", "debug")
	t.Setenv("NEKOBOT_LOG_FORMAT", "json")
	t.Setenv("NEKOBOT_DATABASE_PATH", "stats.db")
	t.Setenv("NEKOBOT_HTTP_TIMEOUT", "750ms")

	cfg := DefaultConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stats.db", cfg.Database.Path)
	assert.Equal(t, 750*time.Millisecond, cfg.HTTP.Timeout)
}

func TestInvalidEnvironmentTimeoutFailsValidation(t *testing.T) {
	t.Setenv("NEKOBOT_HTTP_TIMEOUT", "soon")

	cfg, err := Parse([]byte("reactions: {pat: {triggers: pat}}"))
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidTimeout)
	assert.Contains(t, err.Error(), "NEKOBOT_HTTP_TIMEOUT")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	t.Run("missing token", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		cfg, err := LoadConfig(path)
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrDiscordTokenNotSet)
	})

	t.Run("token from environment", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "secret")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "secret", cfg.DiscordToken)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "secret")
		_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestShippedConfigIsValid(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "pat", cfg.Reactions[0].Type)
	assert.Equal(t, []string{"nekos_life", "waifu_pics", "nekos_best"}, []string{cfg.APIs[0].Name, cfg.APIs[1].Name, cfg.APIs[2].Name})
	assert.Equal(t, "results.0.url", cfg.APIs[2].URLField)

	for _, reaction := range cfg.Reactions {
		served := false
		for _, api := range cfg.APIs {
			if _, ok := api.Endpoint(reaction.Type); ok {
				served = true
			}
		}
		assert.True(t, served, "no provider serves %s", reaction.Type)
	}
}
