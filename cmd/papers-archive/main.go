// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the papers-archive CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/papers-archive/internal/config"
	"github.com/pdiddy/papers-archive/internal/logging"
	"github.com/pdiddy/papers-archive/internal/metrics"
	"github.com/pdiddy/papers-archive/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// Default data locations, relative to the working directory.
const (
	defaultDataDir = "data/papers"
	defaultOutDir  = "data"
)

var (
	// appConfig holds the environment settings after the config file and
	// secrets are applied.
	appConfig *config.Config

	// logger is tagged with the run id of the current command.
	logger zerolog.Logger
)

// rootCmd is the base command for the papers-archive CLI.
var rootCmd = &cobra.Command{
	Use:   "papers-archive",
	Short: "Enrich and publish the daily AI papers archive",
	Long: `papers-archive maintains a static archive of daily AI paper listings.

Each listed paper is stored as one JSON record under data/papers/<date>/.
translate adds an English summary and a Chinese translation to each record;
build-index merges duplicate captures, withholds dates that are not yet
released, writes a daily digest and publishes index.json, search_index.json
and dates/<date>.json for the site.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./papers-archive.yaml or ~/.config/papers-archive/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: env LOG_LEVEL or info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json (default: env LOG_FORMAT or console)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("papers-archive")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "papers-archive"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setup loads the layered configuration (dotenv, environment, config file,
// secrets, flags) and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFileConfig(cfg)

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	base := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	logger, _ = logging.WithRun(base, cmd.Name())

	s, err := secrets.Load(secrets.DefaultDir, logger)
	if err != nil {
		return err
	}
	cfg.ApplySecrets(s)

	appConfig = cfg
	return nil
}

// fileKeys maps config file keys to the settings they override.
var fileKeys = map[string]func(*config.Config) *string{
	"provider":           func(c *config.Config) *string { return &c.Provider },
	"model":              func(c *config.Config) *string { return &c.Model },
	"summary_model":      func(c *config.Config) *string { return &c.SummaryModel },
	"prompt_lang":        func(c *config.Config) *string { return &c.PromptLang },
	"workers":            func(c *config.Config) *string { return &c.Workers },
	"endpoint":           func(c *config.Config) *string { return &c.Endpoint },
	"app_name":           func(c *config.Config) *string { return &c.AppName },
	"app_url":            func(c *config.Config) *string { return &c.AppURL },
	"timezone":           func(c *config.Config) *string { return &c.Timezone },
	"release_hour":       func(c *config.Config) *string { return &c.ReleaseHour },
	"release_minute":     func(c *config.Config) *string { return &c.ReleaseMinute },
	"release_delay_days": func(c *config.Config) *string { return &c.ReleaseDelayDays },
	"log_level":          func(c *config.Config) *string { return &c.LogLevel },
	"log_format":         func(c *config.Config) *string { return &c.LogFormat },
}

// applyFileConfig overrides environment values with keys present in the
// config file.
func applyFileConfig(cfg *config.Config) {
	for key, field := range fileKeys {
		if viper.IsSet(key) {
			*field(cfg) = viper.GetString(key)
		}
	}
	if viper.IsSet("requests_per_second") {
		cfg.RequestsPerSecond = viper.GetFloat64("requests_per_second")
	}
}

// stringSetting returns the flag value when it was given, else the config
// file value, else the flag default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	v, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return v
}

// writeMetrics stamps the run and writes the textfile when path is set.
func writeMetrics(rec *metrics.Recorder, command, path string) error {
	if path == "" {
		return nil
	}
	rec.Finish(command, time.Now())
	if err := rec.WriteTextfile(path); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	logger.Debug().Str("path", path).Msg("metrics written")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
