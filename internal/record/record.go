// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record turns raw per-paper JSON objects into canonical
// PaperRecords: typed upvotes, derived PDF links, a single authoritative
// listing date and cleaned author lists.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/internal/layout"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// arxivPDFBase is the prefix for derived PDF links.
var arxivPDFBase = "https://arxiv.org/pdf/"

// arxivIDPattern finds an arXiv id anywhere in a URL: "2602.01234", "2602.01234v2".
var arxivIDPattern = regexp.MustCompile(`\b(\d{4}\.\d{4,5}(?:v\d+)?)\b`)

// ErrInvalidRecord is returned by Load for files that are not usable records.
var ErrInvalidRecord = errors.New("invalid paper record")

// requiredFields must be non-empty after normalization.
var requiredFields = []string{"paper_id", "date", "title", "hf_url"}

// ArxivID extracts the arXiv id from an arXiv URL, or "" when there is none.
func ArxivID(arxivURL string) string {
	if m := arxivIDPattern.FindStringSubmatch(arxivURL); m != nil {
		return m[1]
	}
	return ""
}

// PDFURL derives the arXiv PDF link from an arXiv URL.
func PDFURL(arxivURL string) string {
	id := ArxivID(arxivURL)
	if id == "" {
		return ""
	}
	return arxivPDFBase + id
}

// ParseUpvotes coerces an upvote value into a non-negative int. Numbers and
// numeric text (optionally comma-grouped) are accepted; anything else is 0.
func ParseUpvotes(v any) int {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if i, err := strconv.Atoi(s); err == nil {
			n = float64(i)
		} else if f, err := strconv.ParseFloat(s, 64); err == nil {
			n = f
		} else {
			return 0
		}
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	if n >= math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// Text returns the trimmed string form of a scalar JSON value. Objects,
// arrays and null become "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Authors returns the non-empty trimmed author names of a JSON array.
func Authors(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	authors := make([]string, 0, len(list))
	for _, a := range list {
		if name := Text(a); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// Normalize builds a canonical PaperRecord from a raw JSON object.
// pathDate is the date implied by the file's storage location; when set it
// wins over the embedded date, and a disagreement is logged.
func Normalize(raw map[string]any, pathDate string, log zerolog.Logger) types.PaperRecord {
	rec := types.PaperRecord{
		Date:        Text(raw["date"]),
		PaperID:     Text(raw["paper_id"]),
		Title:       Text(raw["title"]),
		Authors:     Authors(raw["authors"]),
		Abstract:    Text(raw["abstract"]),
		SummaryEN:   Text(raw["summary_en"]),
		SummaryZH:   Text(raw["summary_zh"]),
		HFURL:       Text(raw["hf_url"]),
		ArxivURL:    Text(raw["arxiv_url"]),
		ArxivPDFURL: Text(raw["arxiv_pdf_url"]),
		GithubURL:   Text(raw["github_url"]),
		Upvotes:     ParseUpvotes(raw["upvotes"]),
		FetchedAt:   Text(raw["fetched_at"]),
	}

	if pathDate != "" {
		if rec.Date != "" && rec.Date != pathDate {
			log.Warn().
				Str("paper_id", rec.PaperID).
				Str("embedded_date", rec.Date).
				Str("path_date", pathDate).
				Msg("date mismatch, using storage location date")
		}
		rec.Date = pathDate
	}

	if rec.ArxivPDFURL == "" {
		rec.ArxivPDFURL = PDFURL(rec.ArxivURL)
	}

	return rec
}

// ReadRaw reads a record file as a raw JSON object.
func ReadRaw(path string) (map[string]any, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Map(), nil
}

// Load reads and normalizes one record file. Files that cannot be parsed,
// or that lack paper_id, date, title or hf_url, return ErrInvalidRecord.
func Load(path string, log zerolog.Logger) (types.PaperRecord, error) {
	raw, err := ReadRaw(path)
	if err != nil {
		return types.PaperRecord{}, err
	}

	rec := Normalize(raw, layout.DateFromPath(path), log)

	values := map[string]string{
		"paper_id": rec.PaperID,
		"date":     rec.Date,
		"title":    rec.Title,
		"hf_url":   rec.HFURL,
	}
	for _, field := range requiredFields {
		if values[field] == "" {
			return types.PaperRecord{}, fmt.Errorf("%w: %s: missing %s", ErrInvalidRecord, path, field)
		}
	}

	return rec, nil
}
