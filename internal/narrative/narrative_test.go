// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papers-archive/internal/chat"
	"github.com/pdiddy/papers-archive/pkg/types"
)

var fixedClock = func() time.Time { return time.Date(2026, 2, 11, 1, 2, 3, 0, time.UTC) }

func samplePapers() []types.PaperRecord {
	return []types.PaperRecord{
		{PaperID: "2602.00001", Title: "Alpha", Upvotes: 10, GithubURL: "https://github.com/a/a", SummaryEN: "Alpha summary."},
		{PaperID: "2602.00003", Title: "Gamma", Upvotes: 30},
		{PaperID: "2602.00002", Title: "Beta", Upvotes: 30, Abstract: "Beta abstract."},
		{PaperID: "2602.00004", Title: "Delta", Upvotes: 1},
	}
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{Total: 4, Upvotes: 71, WithGithub: 1}, ComputeStats(samplePapers()))
}

func TestFallbackContent(t *testing.T) {
	want := "Overview\n" +
		"- Date: 2026-02-10\n" +
		"- Total Papers: 4\n" +
		"- Total Upvotes: 71\n" +
		"- Papers with GitHub: 1\n" +
		"\n" +
		"Key Takeaways\n" +
		"1. 2026-02-10 has 4 papers with broad coverage across multiple AI subfields.\n" +
		"2. Community attention is concentrated on a few papers (total 👍 71).\n" +
		"3. 1 papers provide GitHub links, indicating practical reproducibility focus.\n" +
		"\n" +
		"Notable Papers\n" +
		"- [2602.00003] Gamma (👍30)\n" +
		"- [2602.00002] Beta (👍30)\n" +
		"- [2602.00001] Alpha (👍10)"
	assert.Equal(t, want, FallbackContent("2026-02-10", samplePapers()))
}

func TestFallbackContent_Empty(t *testing.T) {
	got := FallbackContent("2026-02-10", nil)
	assert.True(t, strings.HasSuffix(got, "1. No papers were fetched for this date.\n\nNotable Papers\n- N/A"))
	assert.Contains(t, got, "- Total Papers: 0\n")
}

func TestPrompt(t *testing.T) {
	p := Prompt("2026-02-10", samplePapers())
	assert.Contains(t, p, "统计信息（可直接使用）:\n- Date: 2026-02-10\n- Total Papers: 4\n- Total Upvotes: 71\n- Papers with GitHub: 1\n")
	assert.Contains(t, p, "- [2602.00003] Gamma | upvotes=30 | gist=\n")
	assert.Contains(t, p, "- [2602.00002] Beta | upvotes=30 | gist=Beta abstract.\n")
	assert.Contains(t, p, "- [2602.00001] Alpha | upvotes=10 | gist=Alpha summary.\n")
	assert.True(t, strings.HasSuffix(p, "- [2602.00004] Delta | upvotes=1 | gist=\n"))
	assert.Less(t, strings.Index(p, "[2602.00003]"), strings.Index(p, "[2602.00002] Beta"))
}

func TestStripAISummaryMetric(t *testing.T) {
	in := "Overview\n- Date: D\n- Papers with AI Summary: 5\n\n\n\nKey Takeaways\n  "
	assert.Equal(t, "Overview\n- Date: D\n\nKey Takeaways", StripAISummaryMetric(in))
}

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages    []chat.Message `json:"messages"`
			Temperature float64        `json:"temperature"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, SystemPrompt, req.Messages[0].Content)
		assert.Equal(t, 0.1, req.Temperature)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerate_Remote(t *testing.T) {
	ts := chatServer(t, http.StatusOK, `{"choices":[{"message":{"content":"Overview\n- Papers with AI Summary: 3\nok"}}]}`)
	client := chat.New(types.AIConfig{Endpoint: ts.URL, APIKey: "sk", Model: "m/summary", MaxAttempts: 1}, ts.Client(), zerolog.Nop())
	g := NewGeneratorWithClient(client, fixedClock, zerolog.Nop())

	s := g.Generate(context.Background(), "2026-02-10", samplePapers())
	assert.Equal(t, types.SummaryOpenRouter, s.Source)
	assert.Equal(t, "m/summary", s.Model)
	assert.Equal(t, "Overview\n\nok", s.Content)
	assert.Equal(t, "2026-02-11T01:02:03Z", s.GeneratedAt)
}

func TestGenerate_TransportErrorFallsBack(t *testing.T) {
	ts := chatServer(t, http.StatusBadGateway, `upstream down`)
	client := chat.New(types.AIConfig{Endpoint: ts.URL, APIKey: "sk", MaxAttempts: 1}, ts.Client(), zerolog.Nop())
	g := NewGeneratorWithClient(client, fixedClock, zerolog.Nop())

	s := g.Generate(context.Background(), "2026-02-10", samplePapers())
	assert.Equal(t, types.SummaryFallback, s.Source)
	assert.Equal(t, "", s.Model)
	assert.Equal(t, FallbackContent("2026-02-10", samplePapers()), s.Content)
}

func TestGenerate_NoKeyFallsBack(t *testing.T) {
	g := NewGenerator(types.AIConfig{}, zerolog.Nop())
	s := g.Generate(context.Background(), "2026-02-10", samplePapers())
	assert.Equal(t, types.SummaryFallback, s.Source)
}

func TestNewGenerator_SummaryModelOverride(t *testing.T) {
	g := NewGenerator(types.AIConfig{APIKey: "sk", Model: "base", SummaryModel: "digest"}, zerolog.Nop())
	require.NotNil(t, g.client)
	assert.Equal(t, "digest", g.client.Model)
	assert.Equal(t, 1, g.client.MaxAttempts)
	assert.Equal(t, 45*time.Second, g.client.HTTP.Timeout)
}

func TestLoadExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"daily_summary": {"date": "2026-02-08", "content": "legacy", "source": "openrouter", "model": "m"},
		"daily_summaries": {
			"2026-02-10": {"date": "2026-02-10", "content": "Ten\n- Papers with AI Summary: 4", "source": "", "generated_at": "g"},
			"2026-02-09": {"content": "- Papers with AI Summary: 1"},
			"2026-02-07": "not an object"
		}
	}`), 0o644))

	g := NewGeneratorWithClient(nil, fixedClock, zerolog.Nop())
	got := g.LoadExisting(path)

	require.Len(t, got, 2)
	assert.Equal(t, types.DailySummary{
		Date: "2026-02-10", Content: "Ten", Source: types.SummaryFallback, GeneratedAt: "g",
	}, got["2026-02-10"])
	assert.Equal(t, types.DailySummary{
		Date: "2026-02-08", Content: "legacy", Source: types.SummaryOpenRouter, Model: "m", GeneratedAt: "2026-02-11T01:02:03Z",
	}, got["2026-02-08"])
}

func TestLoadExisting_MissingOrBroken(t *testing.T) {
	g := NewGeneratorWithClient(nil, fixedClock, zerolog.Nop())
	assert.Empty(t, g.LoadExisting(filepath.Join(t.TempDir(), "none.json")))

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2]`), 0o644))
	assert.Empty(t, g.LoadExisting(path))
}
