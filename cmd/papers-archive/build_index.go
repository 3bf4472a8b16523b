// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papers-archive/internal/index"
	"github.com/pdiddy/papers-archive/internal/metrics"
	"github.com/pdiddy/papers-archive/pkg/types"
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Publish index.json, search_index.json and per-date files",
	Long: `Build-index reads every paper record under --papers-dir, merges repeated
captures of the same paper, withholds dates that are not yet released and
writes the site data into --out-dir:

  index.json          all visible papers plus a digest per date
  search_index.json   flattened documents for client-side search
  dates/<date>.json   one paper list per visible date

Digests already in the previous index.json are carried over unchanged. A
date without one gets a generated digest when it is the newest date and the
template otherwise. Release timing follows ARCHIVE_TIMEZONE,
ARCHIVE_RELEASE_HOUR, ARCHIVE_RELEASE_MINUTE and ARCHIVE_RELEASE_DELAY_DAYS.`,
	RunE: runBuildIndex,
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	cfg := indexConfig(cmd)
	rec := metrics.New()
	if _, err := buildIndex(context.Background(), cfg, rec); err != nil {
		return err
	}
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	return writeMetrics(rec, "build-index", metricsFile)
}

// buildIndex runs one build and prints the summary line.
func buildIndex(ctx context.Context, cfg types.IndexConfig, rec *metrics.Recorder) (index.Report, error) {
	report, err := index.New(cfg, logger).Build(ctx)
	if err != nil {
		return report, fmt.Errorf("building index: %w", err)
	}
	rec.ObserveBuild(report)

	fmt.Printf("papers: %d, dates: %d, hidden: %d, duplicate_groups: %d, summaries reused: %d, generated: %d, fallback: %d\n",
		report.Papers, report.Dates, report.Hidden, report.DuplicateGroups,
		report.Reused, report.Generated, report.Fallback)
	return report, nil
}

// indexConfig layers build-index flags over the environment settings.
func indexConfig(cmd *cobra.Command) types.IndexConfig {
	papersDir := stringSetting(cmd, "papers-dir", "data_dir")
	outDir := stringSetting(cmd, "out-dir", "out_dir")
	cfg := appConfig.Archive(papersDir, outDir, logger).Index
	cfg.SearchDB = stringSetting(cmd, "search-db", "search_db")

	if v, _ := cmd.Flags().GetString("now"); v != "" {
		cfg.Visibility.Now = v
	}
	return cfg
}

// addIndexFlags registers the flags shared by build-index and pipeline.
func addIndexFlags(cmd *cobra.Command, papersDir bool) {
	if papersDir {
		cmd.Flags().String("papers-dir", defaultDataDir, "root of the per-paper record tree")
	}
	cmd.Flags().String("out-dir", defaultOutDir, "directory receiving index.json, search_index.json and dates/")
	cmd.Flags().String("search-db", "", "also rebuild this SQLite search database")
	cmd.Flags().String("now", "", "override the current time for release checks (ISO 8601)")
}

func init() {
	addIndexFlags(buildIndexCmd, true)
	buildIndexCmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics to this path")

	rootCmd.AddCommand(buildIndexCmd)
}
