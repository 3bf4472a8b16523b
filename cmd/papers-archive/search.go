// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papers-archive/internal/index"
	"github.com/pdiddy/papers-archive/internal/searchdb"
	"github.com/pdiddy/papers-archive/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search published papers in the SQLite search database",
	Long: `Search queries the database written by build-index --search-db. Text
queries use SQLite FTS5 syntax and are ranked by relevance; without a query
the newest papers are listed. When the database does not exist yet it is
built from --out-dir/search_index.json.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openSearchDB(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.Query(ctx, searchOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(docs, jsonOutput)
}

func formatSearchOutput(docs []types.SearchDocument, jsonOutput bool) error {
	if jsonOutput {
		data, err := index.Marshal(docs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-12s  %6s  %s\n", "Rank", "Date", "Paper", "Votes", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, d := range docs {
		title := d.Title
		if utf8.RuneCountInString(title) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-12s  %6d  %s\n", i+1, d.Date, d.ID, d.Upvotes, title)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(docs))
	return nil
}

var searchExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the search database to YAML or JSON",
	Long: `Export writes the search database (or a filtered subset) to export.yaml
or export.json next to the database file.`,
	RunE: runSearchExport,
}

func runSearchExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	format, _ := cmd.Flags().GetString("format")

	store, err := openSearchDB(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := searchOptsFromFlags(cmd, args)
	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(ctx, opts)
	case "json":
		path, err = store.ExportJSON(ctx, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// openSearchDB opens the search database, seeding a new one from
// search_index.json.
func openSearchDB(ctx context.Context, cmd *cobra.Command) (*searchdb.Store, error) {
	outDir := stringSetting(cmd, "out-dir", "out_dir")
	dbPath := stringSetting(cmd, "db", "search_db")
	if dbPath == "" {
		dbPath = filepath.Join(outDir, "search.db")
	}

	_, statErr := os.Stat(dbPath)
	store, err := searchdb.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if !os.IsNotExist(statErr) {
		return store, nil
	}

	data, err := os.ReadFile(filepath.Join(outDir, index.SearchIndexFile))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("search database %s is missing and no search index to seed it: %w", dbPath, err)
	}
	var docs []types.SearchDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		store.Close()
		return nil, fmt.Errorf("parsing %s: %w", index.SearchIndexFile, err)
	}
	if err := store.Rebuild(ctx, docs); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) searchdb.QueryOptions {
	date, _ := cmd.Flags().GetString("date")
	limit, _ := cmd.Flags().GetInt("limit")
	return searchdb.QueryOptions{
		Query:      strings.Join(args, " "),
		Date:       date,
		MaxResults: limit,
	}
}

func init() {
	searchCmd.PersistentFlags().String("db", "", "search database path (default: <out-dir>/search.db)")
	searchCmd.PersistentFlags().String("out-dir", defaultOutDir, "directory holding search_index.json")
	searchCmd.PersistentFlags().String("date", "", "only papers listed on this date")

	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	searchExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	searchCmd.AddCommand(searchExportCmd)
	rootCmd.AddCommand(searchCmd)
}
