// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperRecord is one listed paper for one listing date. Field order matches
// the on-disk JSON key order.
type PaperRecord struct {
	// Date is the listing date, YYYY-MM-DD.
	Date string `json:"date" yaml:"date"`

	// PaperID is the listing's identifier (usually an arXiv id).
	PaperID string `json:"paper_id" yaml:"paper_id"`

	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	Abstract string `json:"abstract" yaml:"abstract"`

	// SummaryEN is the AI-generated English summary.
	SummaryEN string `json:"summary_en" yaml:"summary_en"`

	// SummaryZH is the Chinese translation of SummaryEN.
	SummaryZH string `json:"summary_zh" yaml:"summary_zh"`

	HFURL       string `json:"hf_url" yaml:"hf_url"`
	ArxivURL    string `json:"arxiv_url" yaml:"arxiv_url"`
	ArxivPDFURL string `json:"arxiv_pdf_url" yaml:"arxiv_pdf_url"`
	GithubURL   string `json:"github_url" yaml:"github_url"`

	// Upvotes is the non-negative community vote count.
	Upvotes int `json:"upvotes" yaml:"upvotes"`

	// FetchedAt is the collector's fetch timestamp, kept as text.
	FetchedAt string `json:"fetched_at" yaml:"fetched_at"`
}

// SearchDocument is the flattened per-paper entry written to
// search_index.json and stored in the search database.
type SearchDocument struct {
	ID        string `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	Title     string `json:"title" yaml:"title"`
	Authors   string `json:"authors" yaml:"authors"`
	Abstract  string `json:"abstract" yaml:"abstract"`
	SummaryEN string `json:"summary_en" yaml:"summary_en"`
	SummaryZH string `json:"summary_zh" yaml:"summary_zh"`
	Upvotes   int    `json:"upvotes" yaml:"upvotes"`
}

// DateDocument is the content of dates/<date>.json.
type DateDocument struct {
	Date   string        `json:"date"`
	Count  int           `json:"count"`
	Papers []PaperRecord `json:"papers"`
}
