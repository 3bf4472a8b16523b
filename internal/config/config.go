// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config reads the archive settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/internal/secrets"
	"github.com/pdiddy/papers-archive/internal/translate"
	"github.com/pdiddy/papers-archive/internal/visibility"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Config mirrors the supported environment variables. Integer release and
// worker settings are read as text so a malformed value falls back to its
// default instead of failing the run.
type Config struct {
	Provider         string `envconfig:"TRANSLATE_PROVIDER" default:"auto"`
	Model            string `envconfig:"OPENROUTER_MODEL" default:"moonshotai/kimi-k2.5"`
	SummaryModel     string `envconfig:"OPENROUTER_SUMMARY_MODEL" default:""`
	PromptLang       string `envconfig:"TRANSLATE_PROMPT_LANG" default:""`
	LegacyPromptLang string `envconfig:"OPENROUTER_PROMPT_LANG" default:""`
	Workers          string `envconfig:"TRANSLATE_WORKERS" default:"6"`
	APIKey           string `envconfig:"OPENROUTER_API_KEY" default:""`
	Endpoint         string `envconfig:"OPENROUTER_ENDPOINT" default:"https://openrouter.ai/api/v1/chat/completions"`
	AppName          string `envconfig:"OPENROUTER_APP_NAME" default:"hf-papers-archive"`
	AppURL           string `envconfig:"OPENROUTER_APP_URL" default:"https://github.com/your-org/hf-papers-archive"`

	RequestsPerSecond float64 `envconfig:"OPENROUTER_RPS" default:"0"`

	Timezone         string `envconfig:"ARCHIVE_TIMEZONE" default:"Asia/Shanghai"`
	ReleaseHour      string `envconfig:"ARCHIVE_RELEASE_HOUR" default:"8"`
	ReleaseMinute    string `envconfig:"ARCHIVE_RELEASE_MINUTE" default:"0"`
	ReleaseDelayDays string `envconfig:"ARCHIVE_RELEASE_DELAY_DAYS" default:"1"`
	Now              string `envconfig:"ARCHIVE_NOW" default:""`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// Load processes the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings that have no sensible fallback.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel))); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("OPENROUTER_RPS must be >= 0")
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the environment. Variables that are
// already set keep their values and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplySecrets fills an empty API key from the secrets directory.
func (c *Config) ApplySecrets(s map[string]string) {
	if strings.TrimSpace(c.APIKey) == "" {
		c.APIKey = s[secrets.APIKeyFile]
	}
}

// PromptLanguage returns TRANSLATE_PROMPT_LANG, falling back to
// OPENROUTER_PROMPT_LANG and then auto.
func (c *Config) PromptLanguage() string {
	if v := strings.TrimSpace(c.PromptLang); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.LegacyPromptLang); v != "" {
		return v
	}
	return types.PromptLangAuto
}

// AI returns the chat API settings.
func (c *Config) AI() types.AIConfig {
	return types.AIConfig{
		Provider:          strings.TrimSpace(c.Provider),
		Model:             strings.TrimSpace(c.Model),
		SummaryModel:      strings.TrimSpace(c.SummaryModel),
		APIKey:            strings.TrimSpace(c.APIKey),
		Endpoint:          strings.TrimSpace(c.Endpoint),
		AppName:           strings.TrimSpace(c.AppName),
		AppURL:            strings.TrimSpace(c.AppURL),
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// Archive converts the environment settings into stage configurations.
// Malformed integers fall back to their defaults with a warning; range
// checks happen in the consuming packages.
func (c *Config) Archive(dataDir, outDir string, log zerolog.Logger) types.ArchiveConfig {
	ai := c.AI()
	return types.ArchiveConfig{
		Translation: types.TranslationConfig{
			AIConfig:   ai,
			DataDir:    dataDir,
			Workers:    intSetting("TRANSLATE_WORKERS", c.Workers, translate.DefaultWorkers, log),
			PromptLang: c.PromptLanguage(),
		},
		Index: types.IndexConfig{
			DataDir: dataDir,
			OutDir:  outDir,
			Visibility: types.VisibilityConfig{
				Timezone:      strings.TrimSpace(c.Timezone),
				ReleaseHour:   intSetting("ARCHIVE_RELEASE_HOUR", c.ReleaseHour, visibility.DefaultHour, log),
				ReleaseMinute: intSetting("ARCHIVE_RELEASE_MINUTE", c.ReleaseMinute, visibility.DefaultMinute, log),
				DelayDays:     intSetting("ARCHIVE_RELEASE_DELAY_DAYS", c.ReleaseDelayDays, visibility.DefaultDelayDays, log),
				Now:           strings.TrimSpace(c.Now),
			},
			AI: ai,
		},
	}
}

func intSetting(name, raw string, def int, log zerolog.Logger) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("setting", name).Str("value", raw).Int("default", def).Msg("invalid integer, using default")
		return def
	}
	return v
}
