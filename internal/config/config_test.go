// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papers-archive/internal/secrets"
)

var allVars = []string{
	"TRANSLATE_PROVIDER", "OPENROUTER_MODEL", "OPENROUTER_SUMMARY_MODEL",
	"TRANSLATE_PROMPT_LANG", "OPENROUTER_PROMPT_LANG", "TRANSLATE_WORKERS",
	"OPENROUTER_API_KEY", "OPENROUTER_ENDPOINT", "OPENROUTER_APP_NAME",
	"OPENROUTER_APP_URL", "OPENROUTER_RPS", "ARCHIVE_TIMEZONE",
	"ARCHIVE_RELEASE_HOUR", "ARCHIVE_RELEASE_MINUTE", "ARCHIVE_RELEASE_DELAY_DAYS",
	"ARCHIVE_NOW", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every supported variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	a := cfg.Archive("data/papers", "data", zerolog.Nop())
	assert.Equal(t, "auto", a.Translation.Provider)
	assert.Equal(t, "moonshotai/kimi-k2.5", a.Translation.Model)
	assert.Equal(t, 6, a.Translation.Workers)
	assert.Equal(t, "auto", a.Translation.PromptLang)
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", a.Translation.Endpoint)
	assert.Equal(t, "hf-papers-archive", a.Translation.AppName)
	assert.Equal(t, "data/papers", a.Translation.DataDir)

	v := a.Index.Visibility
	assert.Equal(t, "Asia/Shanghai", v.Timezone)
	assert.Equal(t, 8, v.ReleaseHour)
	assert.Equal(t, 0, v.ReleaseMinute)
	assert.Equal(t, 1, v.DelayDays)
	assert.Equal(t, "", v.Now)
	assert.Equal(t, "data", a.Index.OutDir)
	assert.Equal(t, a.Translation.AIConfig, a.Index.AI)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSLATE_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", " sk-env ")
	t.Setenv("OPENROUTER_SUMMARY_MODEL", "digest/model")
	t.Setenv("OPENROUTER_PROMPT_LANG", "zh")
	t.Setenv("TRANSLATE_WORKERS", "10")
	t.Setenv("OPENROUTER_RPS", "2.5")
	t.Setenv("ARCHIVE_TIMEZONE", "UTC")
	t.Setenv("ARCHIVE_RELEASE_HOUR", "9")
	t.Setenv("ARCHIVE_NOW", "2026-02-10T08:00:00Z")

	cfg, err := Load()
	require.NoError(t, err)
	a := cfg.Archive("p", "o", zerolog.Nop())

	assert.Equal(t, "openrouter", a.Translation.Provider)
	assert.Equal(t, "sk-env", a.Translation.APIKey)
	assert.Equal(t, "digest/model", a.Index.AI.SummaryModel)
	assert.Equal(t, "zh", a.Translation.PromptLang)
	assert.Equal(t, 10, a.Translation.Workers)
	assert.Equal(t, 2.5, a.Translation.RequestsPerSecond)
	assert.Equal(t, "UTC", a.Index.Visibility.Timezone)
	assert.Equal(t, 9, a.Index.Visibility.ReleaseHour)
	assert.Equal(t, "2026-02-10T08:00:00Z", a.Index.Visibility.Now)
}

func TestPromptLanguage_PrefersTranslateVar(t *testing.T) {
	c := &Config{PromptLang: "en", LegacyPromptLang: "zh"}
	assert.Equal(t, "en", c.PromptLanguage())
	c.PromptLang = " "
	assert.Equal(t, "zh", c.PromptLanguage())
	c.LegacyPromptLang = ""
	assert.Equal(t, "auto", c.PromptLanguage())
}

func TestArchive_MalformedIntegersFallBack(t *testing.T) {
	c := &Config{Workers: "many", ReleaseHour: "eight", ReleaseMinute: "", ReleaseDelayDays: "2"}
	a := c.Archive("", "", zerolog.Nop())
	assert.Equal(t, 6, a.Translation.Workers)
	assert.Equal(t, 8, a.Index.Visibility.ReleaseHour)
	assert.Equal(t, 0, a.Index.Visibility.ReleaseMinute)
	assert.Equal(t, 2, a.Index.Visibility.DelayDays)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{LogFormat: "json", LogLevel: "debug"}, ""},
		{"bad format", Config{LogFormat: "xml", LogLevel: "info"}, "LOG_FORMAT"},
		{"bad level", Config{LogFormat: "console", LogLevel: "loud"}, "LOG_LEVEL"},
		{"negative rps", Config{LogFormat: "console", LogLevel: "info", RequestsPerSecond: -1}, "OPENROUTER_RPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplySecrets(t *testing.T) {
	c := &Config{}
	c.ApplySecrets(map[string]string{secrets.APIKeyFile: "sk-file"})
	assert.Equal(t, "sk-file", c.APIKey)

	c = &Config{APIKey: "sk-env"}
	c.ApplySecrets(map[string]string{secrets.APIKeyFile: "sk-file"})
	assert.Equal(t, "sk-env", c.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARCHIVE_TIMEZONE", "UTC")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENROUTER_MODEL=from/dotenv\nARCHIVE_TIMEZONE=Europe/Paris\n"), 0o644))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from/dotenv", os.Getenv("OPENROUTER_MODEL"))
	assert.Equal(t, "UTC", os.Getenv("ARCHIVE_TIMEZONE"))
}
