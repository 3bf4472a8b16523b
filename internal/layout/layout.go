// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout knows where per-paper record files live on disk.
//
// The canonical layout is <data>/<YYYY-MM-DD>/<paper_id>.json. Older runs
// wrote flat files named <YYYY-MM-DD>__<paper_id>.json directly under the
// data directory; both layouts are read, and Migrate moves flat files into
// dated directories.
package layout

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

var (
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	legacyNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})__(.+)$`)
)

// IsDate reports whether s has the YYYY-MM-DD shape.
func IsDate(s string) bool {
	return datePattern.MatchString(s)
}

// DateFromPath infers a listing date from a record file path: the parent
// directory name when it is a date, else a YYYY-MM-DD__ filename prefix.
// It returns "" when neither applies.
func DateFromPath(path string) string {
	parent := filepath.Base(filepath.Dir(path))
	if IsDate(parent) {
		return parent
	}
	if m := legacyNamePattern.FindStringSubmatch(filepath.Base(path)); m != nil {
		return m[1]
	}
	return ""
}

// PaperFiles lists record files under dir. With an empty date it returns
// every *.json below dir; otherwise dir/<date>/*.json plus legacy flat files
// for that date. The result is sorted and free of duplicates. A missing dir
// yields no files and no error.
func PaperFiles(dir, date string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading data directory %s: %w", dir, err)
	}

	var files []string
	if date == "" {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
		sort.Strings(files)
		return files, nil
	}

	dated, err := filepath.Glob(filepath.Join(dir, date, "*.json"))
	if err != nil {
		return nil, err
	}
	legacy, err := filepath.Glob(filepath.Join(dir, date+"__*.json"))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, f := range append(dated, legacy...) {
		if seen[f] {
			continue
		}
		seen[f] = true
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// MigrateSummary holds counts from a layout migration.
type MigrateSummary struct {
	Moved   int
	Skipped int
}

// Migrate moves flat <date>__<id>.json files in dir into <date>/<id>.json.
// Files whose target already exists are left alone and counted as skipped.
// With dryRun set nothing is moved but the counts are reported as if it were.
func Migrate(dir string, dryRun bool, log zerolog.Logger) (MigrateSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return MigrateSummary{}, nil
		}
		return MigrateSummary{}, fmt.Errorf("reading data directory %s: %w", dir, err)
	}

	var summary MigrateSummary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		m := legacyNamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		src := filepath.Join(dir, name)
		dst := filepath.Join(dir, m[1], m[2])

		if _, err := os.Stat(dst); err == nil {
			log.Warn().Str("source", src).Str("target", dst).Msg("target exists, skipping")
			summary.Skipped++
			continue
		}

		if dryRun {
			log.Info().Str("source", src).Str("target", dst).Msg("would move")
			summary.Moved++
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return summary, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		if err := os.Rename(src, dst); err != nil {
			return summary, fmt.Errorf("moving %s: %w", src, err)
		}
		log.Debug().Str("source", src).Str("target", dst).Msg("moved")
		summary.Moved++
	}

	return summary, nil
}
