// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papers-archive/pkg/types"
)

func TestScore(t *testing.T) {
	r := types.PaperRecord{
		SummaryZH: strings.Repeat("中", 16),
		SummaryEN: strings.Repeat("e", 40),
		Abstract:  strings.Repeat("a", 80),
		GithubURL: "https://github.com/x/y",
		Upvotes:   500,
		FetchedAt: "2026-02-10T08:00:00Z",
	}
	assert.Equal(t, 120+90+60+20+200+5, Score(r))
	assert.Equal(t, 0, Score(types.PaperRecord{Upvotes: -4}))
}

func TestGroup_SpecScenario(t *testing.T) {
	zh := strings.Repeat("译", 20)
	abstract := strings.Repeat("x", 100)
	a := types.PaperRecord{
		PaperID: "2401.00001", Date: "2024-01-02", Title: "Paper", HFURL: "https://hf.co/papers/2401.00001",
		SummaryZH: zh, Upvotes: 5,
	}
	b := types.PaperRecord{
		PaperID: "2401.00001", Date: "2024-01-03", Title: "Paper", HFURL: "https://hf.co/papers/2401.00001",
		Abstract: abstract, Upvotes: 12,
	}

	merged, groups := Dedupe([]types.PaperRecord{a, b})
	require.Len(t, merged, 1)
	assert.Equal(t, 1, groups)

	m := merged[0]
	assert.Equal(t, 12, m.Upvotes)
	assert.Equal(t, zh, m.SummaryZH)
	assert.Equal(t, abstract, m.Abstract)
	assert.Equal(t, "2024-01-02", m.Date, "earliest date wins")
}

func TestGroup_AuthorsUnionCaseInsensitive(t *testing.T) {
	records := []types.PaperRecord{
		{PaperID: "p", Authors: []string{"Ada Lovelace", "Alan Turing"}, Upvotes: 1},
		{PaperID: "p", Authors: []string{"alan turing", "Grace Hopper"}, Upvotes: 50},
	}
	m := Group("p", records)
	// The higher-scoring capture is visited first.
	assert.Equal(t, []string{"alan turing", "Grace Hopper", "Ada Lovelace"}, m.Authors)
}

func TestGroup_LongestQualifyingValue(t *testing.T) {
	records := []types.PaperRecord{
		{PaperID: "p", Title: "Short title", ArxivURL: "https://arxiv.org/abs/2401.00001"},
		{PaperID: "p", Title: "A much longer title"},
		{PaperID: "p", Title: "ab", SummaryEN: "tiny"},
	}
	m := Group("p", records)
	assert.Equal(t, "A much longer title", m.Title)
	assert.Equal(t, "tiny", m.SummaryEN, "below threshold still beats empty")
	assert.Equal(t, "https://arxiv.org/pdf/2401.00001", m.ArxivPDFURL)
}

func TestGroup_TieBreakLexicographic(t *testing.T) {
	records := []types.PaperRecord{
		{PaperID: "p", Title: "Alpha"},
		{PaperID: "p", Title: "Omega"},
	}
	assert.Equal(t, "Omega", Group("p", records).Title)
	assert.Equal(t, "Omega", Group("p", []types.PaperRecord{records[1], records[0], records[0]}).Title)
}

func TestGroup_OrderIndependent(t *testing.T) {
	a := types.PaperRecord{PaperID: "p", Date: "2026-02-10", Title: "Paper A", Authors: []string{"X"}, Upvotes: 3, FetchedAt: "2026-02-10T01:00:00Z"}
	b := types.PaperRecord{PaperID: "p", Date: "2026-02-11", Title: "Paper B", Authors: []string{"Y"}, Upvotes: 3, FetchedAt: "2026-02-11T01:00:00Z"}
	assert.Equal(t, Group("p", []types.PaperRecord{a, b}), Group("p", []types.PaperRecord{b, a}))
}

func TestDedupe_NoIDFallsBackToHFURL(t *testing.T) {
	records := []types.PaperRecord{
		{HFURL: "https://hf.co/papers/x", Title: "X", Upvotes: 1},
		{HFURL: "https://hf.co/papers/x", Title: "X", Upvotes: 9},
		{HFURL: "https://hf.co/papers/y", Title: "Y"},
	}
	merged, groups := Dedupe(records)
	require.Len(t, merged, 2)
	assert.Equal(t, 1, groups)
	assert.Equal(t, 9, merged[0].Upvotes)
	assert.Equal(t, "", merged[0].PaperID)
	assert.Equal(t, "Y", merged[1].Title)
}

func TestDedupe_SingletonsUnchanged(t *testing.T) {
	r := types.PaperRecord{PaperID: "solo", Title: "t", Authors: []string{"a", "A"}}
	merged, groups := Dedupe([]types.PaperRecord{r})
	assert.Equal(t, 0, groups)
	assert.Equal(t, []types.PaperRecord{r}, merged)
}
