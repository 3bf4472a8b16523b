// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papers-archive/internal/layout"
	"github.com/pdiddy/papers-archive/internal/metrics"
	"github.com/pdiddy/papers-archive/internal/translate"
	"github.com/pdiddy/papers-archive/pkg/types"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Add English summaries and Chinese translations to paper records",
	Long: `Translate walks the paper records under --data-dir and, for each one,
synthesizes summary_en from the abstract when it is missing and translates
summary_en into summary_zh. Records are edited in place; other fields and
key order are preserved.

With an OpenRouter API key (OPENROUTER_API_KEY or .secrets/openrouter-api-key)
the chat API is used; otherwise a local placeholder translator runs.
Records that already have summary_zh are skipped unless --force is given.`,
	RunE: runTranslate,
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, opts, err := translationConfig(cmd)
	if err != nil {
		return err
	}

	rec := metrics.New()
	stats, err := translateRecords(context.Background(), cfg, opts, rec)
	if err != nil {
		return err
	}

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	if err := writeMetrics(rec, "translate", metricsFile); err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if strict && stats.HasFailures() {
		return fmt.Errorf("%d paper(s) failed translation", stats.Failed)
	}
	return nil
}

// translateRecords runs one translation pass and prints the summary line.
func translateRecords(ctx context.Context, cfg types.TranslationConfig, opts translate.Options, rec *metrics.Recorder) (translate.Stats, error) {
	files, err := layout.PaperFiles(cfg.DataDir, cfg.Date)
	if err != nil {
		return translate.Stats{}, err
	}

	opts.Logger = logger
	opts.Observer = rec
	tr := translate.New(cfg, logger)
	stats := translate.Run(ctx, tr, files, opts)

	fmt.Printf("translated: %d, synthesized_en: %d, skipped: %d, failed: %d\n",
		stats.Translated, stats.Synthesized, stats.Skipped, stats.Failed)
	return stats, nil
}

// translationConfig layers translate flags over the environment settings.
func translationConfig(cmd *cobra.Command) (types.TranslationConfig, translate.Options, error) {
	dataDir := stringSetting(cmd, "data-dir", "data_dir")
	cfg := appConfig.Archive(dataDir, "", logger).Translation

	if v, _ := cmd.Flags().GetString("provider"); cmd.Flags().Changed("provider") {
		cfg.Provider = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetString("prompt-lang"); cmd.Flags().Changed("prompt-lang") {
		switch v {
		case types.PromptLangAuto, types.PromptLangZH, types.PromptLangEN:
			cfg.PromptLang = v
		default:
			return cfg, translate.Options{}, fmt.Errorf("invalid --prompt-lang %q: use auto, zh or en", v)
		}
	}
	if v, _ := cmd.Flags().GetInt("workers"); cmd.Flags().Changed("workers") {
		if v < 1 {
			return cfg, translate.Options{}, fmt.Errorf("--workers must be >= 1")
		}
		cfg.Workers = v
	}
	if v, _ := cmd.Flags().GetString("date"); v != "" {
		if !layout.IsDate(v) {
			return cfg, translate.Options{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", v)
		}
		cfg.Date = v
	}

	force, _ := cmd.Flags().GetBool("force")
	return cfg, translate.Options{Workers: cfg.Workers, Force: force}, nil
}

// addTranslateFlags registers the flags shared by translate and pipeline.
func addTranslateFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", defaultDataDir, "root of the per-paper record tree")
	cmd.Flags().String("provider", types.ProviderAuto, "translator: auto, openrouter or dummy")
	cmd.Flags().String("model", "", "chat model override (e.g. moonshotai/kimi-k2.5)")
	cmd.Flags().String("prompt-lang", types.PromptLangAuto, "prompt language: auto, zh or en")
	cmd.Flags().Bool("force", false, "retranslate records that already have summary_zh")
	cmd.Flags().String("date", "", "only process records for this date (YYYY-MM-DD)")
	cmd.Flags().Int("workers", translate.DefaultWorkers, fmt.Sprintf("concurrent papers (capped at %d)", translate.MaxWorkers))
	cmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics to this path")
}

func init() {
	addTranslateFlags(translateCmd)
	translateCmd.Flags().Bool("strict", false, "exit non-zero when any paper fails")

	rootCmd.AddCommand(translateCmd)
}
