// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papers-archive/internal/metrics"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Translate records and then rebuild the index",
	Long: `Pipeline runs translate followed by build-index with one shared set of
flags. Use --date to translate a single listing date; the index is always
rebuilt from every record. Translation failures do not stop the build.`,
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rec := metrics.New()

	tcfg, opts, err := translationConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := translateRecords(ctx, tcfg, opts, rec); err != nil {
		return err
	}

	icfg := appConfig.Archive(tcfg.DataDir, stringSetting(cmd, "out-dir", "out_dir"), logger).Index
	icfg.SearchDB = stringSetting(cmd, "search-db", "search_db")
	if v, _ := cmd.Flags().GetString("now"); v != "" {
		icfg.Visibility.Now = v
	}
	if _, err := buildIndex(ctx, icfg, rec); err != nil {
		return err
	}

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	return writeMetrics(rec, "pipeline", metricsFile)
}

func init() {
	addTranslateFlags(pipelineCmd)
	addIndexFlags(pipelineCmd, false)

	rootCmd.AddCommand(pipelineCmd)
}
