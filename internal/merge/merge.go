// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge collapses repeated captures of the same paper into one
// record, keeping the most complete value of every field.
package merge

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/papers-archive/internal/record"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Minimum rune lengths for a field value to qualify when picking the best
// value across a group.
const (
	minTitle       = 3
	minAbstract    = 20
	minSummaryEN   = 20
	minSummaryZH   = 8
	minHFURL       = 10
	minArxivURL    = 8
	minArxivPDFURL = 8
	minGithubURL   = 8
	minFetchedAt   = 8
)

// noIDPrefix namespaces hf_url keys for records without a paper_id.
const noIDPrefix = "__noid__::"

// maxUpvoteScore caps the upvote contribution to Score.
const maxUpvoteScore = 200

// Key returns the identity key used to group duplicate captures.
func Key(r types.PaperRecord) string {
	if id := strings.TrimSpace(r.PaperID); id != "" {
		return id
	}
	return noIDPrefix + r.HFURL
}

func atLeast(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

// Score rates how complete a capture is. Higher is better.
func Score(r types.PaperRecord) int {
	score := 0
	if atLeast(r.SummaryZH, 16) {
		score += 120
	}
	if atLeast(r.SummaryEN, 40) {
		score += 90
	}
	if atLeast(r.Abstract, 80) {
		score += 60
	}
	if atLeast(r.GithubURL, 8) {
		score += 20
	}
	score += min(max(r.Upvotes, 0), maxUpvoteScore)
	if atLeast(r.FetchedAt, 10) {
		score += 5
	}
	return score
}

// rank orders a group best-first: score, then fetched_at descending, then
// date and hf_url ascending so that equal captures still sort stably.
func rank(records []types.PaperRecord) []types.PaperRecord {
	sorted := make([]types.PaperRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if sa, sb := Score(a), Score(b); sa != sb {
			return sa > sb
		}
		if a.FetchedAt != b.FetchedAt {
			return a.FetchedAt > b.FetchedAt
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.HFURL < b.HFURL
	})
	return sorted
}

// pickBest returns the longest value of field with at least minLen runes,
// ties going to the lexicographically greater value. When nothing
// qualifies it retries with any non-empty value, and finally returns "".
func pickBest(records []types.PaperRecord, field func(types.PaperRecord) string, minLen int) string {
	for _, threshold := range []int{minLen, 1} {
		best := ""
		bestLen := -1
		for _, r := range records {
			v := strings.TrimSpace(field(r))
			n := utf8.RuneCountInString(v)
			if n < threshold {
				continue
			}
			if n > bestLen || (n == bestLen && v > best) {
				best, bestLen = v, n
			}
		}
		if bestLen >= 0 {
			return best
		}
	}
	return ""
}

// Group merges the captures of one paper. A single-member group is
// returned unchanged.
func Group(key string, records []types.PaperRecord) types.PaperRecord {
	if len(records) == 1 {
		return records[0]
	}

	sorted := rank(records)
	seed := sorted[0]

	date := ""
	for _, r := range records {
		d := strings.TrimSpace(r.Date)
		if d != "" && (date == "" || d < date) {
			date = d
		}
	}
	if date == "" {
		date = seed.Date
	}

	authors := []string{}
	seen := make(map[string]bool)
	for _, r := range sorted {
		for _, a := range r.Authors {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			k := strings.ToLower(a)
			if seen[k] {
				continue
			}
			seen[k] = true
			authors = append(authors, a)
		}
	}

	upvotes := 0
	for _, r := range records {
		upvotes = max(upvotes, r.Upvotes)
	}

	paperID := key
	if strings.HasPrefix(key, noIDPrefix) {
		paperID = seed.PaperID
	}

	merged := types.PaperRecord{
		Date:        date,
		PaperID:     paperID,
		Title:       pickBest(sorted, func(r types.PaperRecord) string { return r.Title }, minTitle),
		Authors:     authors,
		Abstract:    pickBest(sorted, func(r types.PaperRecord) string { return r.Abstract }, minAbstract),
		SummaryEN:   pickBest(sorted, func(r types.PaperRecord) string { return r.SummaryEN }, minSummaryEN),
		SummaryZH:   pickBest(sorted, func(r types.PaperRecord) string { return r.SummaryZH }, minSummaryZH),
		HFURL:       pickBest(sorted, func(r types.PaperRecord) string { return r.HFURL }, minHFURL),
		ArxivURL:    pickBest(sorted, func(r types.PaperRecord) string { return r.ArxivURL }, minArxivURL),
		ArxivPDFURL: pickBest(sorted, func(r types.PaperRecord) string { return r.ArxivPDFURL }, minArxivPDFURL),
		GithubURL:   pickBest(sorted, func(r types.PaperRecord) string { return r.GithubURL }, minGithubURL),
		Upvotes:     upvotes,
		FetchedAt:   pickBest(sorted, func(r types.PaperRecord) string { return r.FetchedAt }, minFetchedAt),
	}

	fillFromSeed(&merged, seed)

	if merged.ArxivPDFURL == "" && merged.ArxivURL != "" {
		merged.ArxivPDFURL = record.PDFURL(merged.ArxivURL)
	}

	return merged
}

// fillFromSeed copies seed values into fields that are still empty.
func fillFromSeed(dst *types.PaperRecord, seed types.PaperRecord) {
	fields := []struct {
		dst *string
		src string
	}{
		{&dst.Title, seed.Title},
		{&dst.HFURL, seed.HFURL},
		{&dst.ArxivURL, seed.ArxivURL},
		{&dst.ArxivPDFURL, seed.ArxivPDFURL},
		{&dst.FetchedAt, seed.FetchedAt},
	}
	for _, f := range fields {
		if strings.TrimSpace(*f.dst) == "" {
			*f.dst = strings.TrimSpace(f.src)
		}
	}
	if len(dst.Authors) == 0 && len(seed.Authors) > 0 {
		dst.Authors = append([]string(nil), seed.Authors...)
	}
}

// Dedupe groups records by Key and merges every group. Groups keep the
// order of their first member. It returns the merged records and the number
// of groups that had more than one member.
func Dedupe(records []types.PaperRecord) ([]types.PaperRecord, int) {
	index := make(map[string]int)
	var keys []string
	var groups [][]types.PaperRecord

	for _, r := range records {
		key := Key(r)
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			keys = append(keys, key)
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], r)
	}

	deduped := make([]types.PaperRecord, 0, len(groups))
	duplicateGroups := 0
	for i, group := range groups {
		if len(group) > 1 {
			duplicateGroups++
		}
		deduped = append(deduped, Group(keys[i], group))
	}
	return deduped, duplicateGroups
}
