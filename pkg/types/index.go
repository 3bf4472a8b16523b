// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummarySource identifies how a DailySummary was produced.
type SummarySource string

const (
	SummaryOpenRouter SummarySource = "openrouter"
	SummaryFallback   SummarySource = "fallback"
)

// DailySummary is the narrative digest for one listing date.
type DailySummary struct {
	Date    string        `json:"date" yaml:"date"`
	Content string        `json:"content" yaml:"content"`
	Source  SummarySource `json:"source" yaml:"source"`

	// Model is empty for fallback summaries.
	Model string `json:"model" yaml:"model"`

	// GeneratedAt is an RFC 3339 UTC timestamp.
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
}

// Index is the content of index.json.
type Index struct {
	GeneratedAt string `json:"generated_at"`
	Count       int    `json:"count"`

	// Dates lists visible dates, newest first.
	Dates []string `json:"dates"`

	// DailySummary is the latest date's summary, nil when nothing is visible.
	DailySummary *DailySummary `json:"daily_summary"`

	DailySummaries map[string]DailySummary `json:"daily_summaries"`
	Papers         []PaperRecord           `json:"papers"`
}
