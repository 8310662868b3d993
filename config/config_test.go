package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "")
	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("HASHTAG_PLATFORM", "")
	t.Setenv("HTML_READER", "")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, models.PlatformInstagramHashtag, cfg.HashtagPlatform)
	assert.Equal(t, HTMLReaderGoquery, cfg.HTMLReader)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "7")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("HASHTAG_PLATFORM", "LinkedIn_Hashtag")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("HTML_READER", "Regex")

	cfg := Load()

	assert.Equal(t, 7, cfg.MaxConcurrency)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, models.PlatformLinkedInHashtag, cfg.HashtagPlatform)
	assert.True(t, cfg.PostgresEnabled)
	assert.Equal(t, HTMLReaderRegex, cfg.HTMLReader)
	require.NoError(t, cfg.Validate())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "lots")
	t.Setenv("FETCH_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"fetch mode", func(c *Config) { c.FetchMode = "carrier-pigeon" }},
		{"html reader", func(c *Config) { c.HTMLReader = "lxml" }},
		{"ai provider", func(c *Config) { c.AIProvider = "oracle" }},
		{"hashtag platform", func(c *Config) { c.HashtagPlatform = models.PlatformReddit }},
		{"concurrency", func(c *Config) { c.MaxConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				FetchMode:       FetchModeHTTP,
				HTMLReader:      HTMLReaderGoquery,
				AIProvider:      AIProviderNone,
				HashtagPlatform: models.PlatformInstagramHashtag,
				MaxConcurrency:  1,
			}
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "leads", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=leads sslmode=disable", cfg.DSN())
}
