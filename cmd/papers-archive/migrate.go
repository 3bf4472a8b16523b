// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papers-archive/internal/layout"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate-layout",
	Short: "Move flat <date>__<id>.json records into dated directories",
	Long: `Migrate-layout moves records stored as <data-dir>/<date>__<id>.json to
<data-dir>/<date>/<id>.json. Records whose target already exists are left
in place. Use --dry-run to list the moves without touching any file.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dataDir := stringSetting(cmd, "data-dir", "data_dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	summary, err := layout.Migrate(dataDir, dryRun, logger)
	if err != nil {
		return err
	}

	verb := "moved"
	if dryRun {
		verb = "would move"
	}
	fmt.Printf("%s: %d, skipped: %d\n", verb, summary.Moved, summary.Skipped)
	return nil
}

func init() {
	migrateCmd.Flags().String("data-dir", defaultDataDir, "root of the per-paper record tree")
	migrateCmd.Flags().Bool("dry-run", false, "report moves without renaming files")

	rootCmd.AddCommand(migrateCmd)
}
