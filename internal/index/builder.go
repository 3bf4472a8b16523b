// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the published site data from the per-paper record
// files: the aggregate index.json, the flattened search_index.json and one
// dates/<date>.json per visible listing date.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/internal/layout"
	"github.com/pdiddy/papers-archive/internal/merge"
	"github.com/pdiddy/papers-archive/internal/narrative"
	"github.com/pdiddy/papers-archive/internal/record"
	"github.com/pdiddy/papers-archive/internal/searchdb"
	"github.com/pdiddy/papers-archive/internal/visibility"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Output file names under the output directory.
const (
	IndexFile       = "index.json"
	SearchIndexFile = "search_index.json"
	DatesDir        = "dates"
)

// Report holds the counts of one build.
type Report struct {
	Papers          int
	Dates           int
	Hidden          int
	DuplicateGroups int
	Skipped         int
	Reused          int
	Generated       int
	Fallback        int
}

// Builder runs index builds. Policy, Generator and Clock may be replaced
// after New.
type Builder struct {
	cfg types.IndexConfig
	log zerolog.Logger

	Policy    visibility.Policy
	Generator *narrative.Generator
	Clock     func() time.Time
}

// New prepares a Builder from cfg: the visibility policy is resolved once
// and the narrative generator uses cfg.AI.
func New(cfg types.IndexConfig, log zerolog.Logger) *Builder {
	return &Builder{
		cfg:       cfg,
		log:       log,
		Policy:    visibility.NewPolicy(cfg.Visibility, log),
		Generator: narrative.NewGenerator(cfg.AI, log),
		Clock:     time.Now,
	}
}

// Build reads every record under the data directory and rewrites the
// output files. Unreadable records are skipped; only output failures are
// returned as errors.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	var report Report

	files, err := layout.PaperFiles(b.cfg.DataDir, "")
	if err != nil {
		return report, err
	}

	records := make([]types.PaperRecord, 0, len(files))
	for _, path := range files {
		rec, err := record.Load(path, b.log)
		if err != nil {
			b.log.Warn().Err(err).Str("path", path).Msg("skipping record")
			report.Skipped++
			continue
		}
		records = append(records, rec)
	}

	deduped, groups := merge.Dedupe(records)
	report.DuplicateGroups = groups

	visible := make([]types.PaperRecord, 0, len(deduped))
	for _, p := range deduped {
		if b.Policy.Visible(p.Date) {
			visible = append(visible, p)
		}
	}
	report.Hidden = len(deduped) - len(visible)

	sortPapers(visible)
	dates, byDate := groupByDate(visible)
	report.Papers = len(visible)
	report.Dates = len(dates)

	summaries := b.summaries(ctx, dates, byDate, &report)

	idx := types.Index{
		GeneratedAt:    b.Clock().UTC().Format(time.RFC3339),
		Count:          len(visible),
		Dates:          dates,
		DailySummaries: summaries,
		Papers:         visible,
	}
	if len(dates) > 0 {
		latest := summaries[dates[0]]
		idx.DailySummary = &latest
	}

	if err := writeJSON(filepath.Join(b.cfg.OutDir, IndexFile), idx); err != nil {
		return report, err
	}

	docs := SearchDocuments(visible)
	if err := writeJSON(filepath.Join(b.cfg.OutDir, SearchIndexFile), docs); err != nil {
		return report, err
	}

	if err := b.writeDates(dates, byDate); err != nil {
		return report, err
	}

	if b.cfg.SearchDB != "" {
		b.rebuildSearchDB(ctx, docs)
	}

	b.log.Info().
		Int("papers", report.Papers).
		Int("dates", report.Dates).
		Int("hidden", report.Hidden).
		Int("duplicate_groups", report.DuplicateGroups).
		Int("skipped", report.Skipped).
		Int("summaries_reused", report.Reused).
		Int("summaries_generated", report.Generated).
		Int("summaries_fallback", report.Fallback).
		Msg("built index files")

	return report, nil
}

// summaries carries every digest over from the previous index. A date
// without one gets a generated digest when it is the latest date and the
// template otherwise.
func (b *Builder) summaries(ctx context.Context, dates []string, byDate map[string][]types.PaperRecord, report *Report) map[string]types.DailySummary {
	out := make(map[string]types.DailySummary, len(dates))
	if len(dates) == 0 {
		return out
	}

	existing := b.Generator.LoadExisting(filepath.Join(b.cfg.OutDir, IndexFile))
	latest := dates[0]

	for _, date := range dates {
		if prev, ok := existing[date]; ok {
			out[date] = prev
			report.Reused++
			continue
		}

		var s types.DailySummary
		if date == latest {
			s = b.Generator.Generate(ctx, date, byDate[date])
		} else {
			s = b.Generator.Fallback(date, byDate[date])
		}

		if s.Source == types.SummaryOpenRouter {
			report.Generated++
		} else {
			report.Fallback++
		}
		out[date] = s
	}
	return out
}

func (b *Builder) writeDates(dates []string, byDate map[string][]types.PaperRecord) error {
	dir := filepath.Join(b.cfg.OutDir, DatesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	keep := make(map[string]bool, len(dates))
	for _, d := range dates {
		keep[d+".json"] = true
	}
	stale, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if keep[filepath.Base(path)] {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing stale %s: %w", path, err)
		}
		b.log.Debug().Str("path", path).Msg("removed stale date file")
	}

	for _, d := range dates {
		doc := types.DateDocument{Date: d, Count: len(byDate[d]), Papers: byDate[d]}
		if err := writeJSON(filepath.Join(dir, d+".json"), doc); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) rebuildSearchDB(ctx context.Context, docs []types.SearchDocument) {
	store, err := searchdb.Open(b.cfg.SearchDB, b.log)
	if err != nil {
		b.log.Warn().Err(err).Str("path", b.cfg.SearchDB).Msg("search database unavailable")
		return
	}
	defer store.Close()
	if err := store.Rebuild(ctx, docs); err != nil {
		b.log.Warn().Err(err).Str("path", b.cfg.SearchDB).Msg("search database rebuild failed")
	}
}

// sortPapers orders papers by date, upvotes and paper_id, all descending.
func sortPapers(papers []types.PaperRecord) {
	sort.SliceStable(papers, func(i, j int) bool {
		a, c := papers[i], papers[j]
		if a.Date != c.Date {
			return a.Date > c.Date
		}
		if a.Upvotes != c.Upvotes {
			return a.Upvotes > c.Upvotes
		}
		return a.PaperID > c.PaperID
	})
}

// groupByDate splits sorted papers per date. Dates are returned newest
// first; each group keeps the input order.
func groupByDate(papers []types.PaperRecord) ([]string, map[string][]types.PaperRecord) {
	byDate := make(map[string][]types.PaperRecord)
	dates := []string{}
	for _, p := range papers {
		if _, ok := byDate[p.Date]; !ok {
			dates = append(dates, p.Date)
		}
		byDate[p.Date] = append(byDate[p.Date], p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, byDate
}

// SearchDocuments flattens papers for client-side search.
func SearchDocuments(papers []types.PaperRecord) []types.SearchDocument {
	docs := make([]types.SearchDocument, len(papers))
	for i, p := range papers {
		docs[i] = types.SearchDocument{
			ID:        p.PaperID,
			Date:      p.Date,
			Title:     p.Title,
			Authors:   strings.Join(p.Authors, " "),
			Abstract:  p.Abstract,
			SummaryEN: p.SummaryEN,
			SummaryZH: p.SummaryZH,
			Upvotes:   p.Upvotes,
		}
	}
	return docs
}

// Marshal renders v as two-space indented JSON with HTML and non-ASCII
// characters left unescaped.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return layout.WriteFile(path, data)
}
