// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package narrative

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/internal/chat"
	"github.com/pdiddy/papers-archive/internal/record"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Remote call settings. One attempt only: a failed digest falls back to
// the template rather than stalling the build.
const (
	summaryTemperature = 0.1
	summaryTimeout     = 45 * time.Second
	summaryAttempts    = 1
)

// Generator produces DailySummaries.
type Generator struct {
	client *chat.Client
	clock  func() time.Time
	log    zerolog.Logger
}

// NewGenerator builds a generator from cfg. Without an API key every
// digest uses the template. SummaryModel overrides Model.
func NewGenerator(cfg types.AIConfig, log zerolog.Logger) *Generator {
	g := &Generator{clock: time.Now, log: log}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return g
	}
	if m := strings.TrimSpace(cfg.SummaryModel); m != "" {
		cfg.Model = m
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = summaryTimeout
	}
	cfg.MaxAttempts = summaryAttempts
	g.client = chat.New(cfg, nil, log)
	return g
}

// NewGeneratorWithClient uses client for remote digests. A nil client
// disables them.
func NewGeneratorWithClient(client *chat.Client, clock func() time.Time, log zerolog.Logger) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{client: client, clock: clock, log: log}
}

func (g *Generator) now() string {
	return g.clock().UTC().Format(time.RFC3339)
}

// Fallback returns the template digest for a day.
func (g *Generator) Fallback(date string, papers []types.PaperRecord) types.DailySummary {
	return types.DailySummary{
		Date:        date,
		Content:     FallbackContent(date, papers),
		Source:      types.SummaryFallback,
		Model:       "",
		GeneratedAt: g.now(),
	}
}

// Generate asks the chat API for a digest and falls back to the template
// on any failure. It never returns an empty digest.
func (g *Generator) Generate(ctx context.Context, date string, papers []types.PaperRecord) types.DailySummary {
	if g.client == nil {
		g.log.Warn().Str("date", date).Msg("no API key for daily summary, using fallback")
		return g.Fallback(date, papers)
	}

	content, err := g.client.Complete(ctx, []chat.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: Prompt(date, papers)},
	}, summaryTemperature)
	if err == nil {
		content = StripAISummaryMetric(content)
	}
	if err != nil || content == "" {
		g.log.Warn().Err(err).Str("date", date).Msg("daily summary generation failed, using fallback")
		return g.Fallback(date, papers)
	}

	return types.DailySummary{
		Date:        date,
		Content:     content,
		Source:      types.SummaryOpenRouter,
		Model:       g.client.Model,
		GeneratedAt: g.now(),
	}
}

// NormalizeExisting validates a previously persisted digest. It returns
// false when raw is not an object or has no content left after stripping.
func NormalizeExisting(date string, raw map[string]any, now string) (types.DailySummary, bool) {
	if raw == nil {
		return types.DailySummary{}, false
	}
	content := StripAISummaryMetric(record.Text(raw["content"]))
	if content == "" {
		return types.DailySummary{}, false
	}
	s := types.DailySummary{
		Date:        date,
		Content:     content,
		Source:      types.SummarySource(record.Text(raw["source"])),
		Model:       record.Text(raw["model"]),
		GeneratedAt: record.Text(raw["generated_at"]),
	}
	if s.Source == "" {
		s.Source = types.SummaryFallback
	}
	if s.GeneratedAt == "" {
		s.GeneratedAt = now
	}
	return s, true
}

// LoadExisting reads the digests of a previous index.json, including the
// legacy singular daily_summary. A missing or unreadable file yields an
// empty map.
func (g *Generator) LoadExisting(indexPath string) map[string]types.DailySummary {
	out := make(map[string]types.DailySummary)

	data, err := os.ReadFile(indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			g.log.Warn().Err(err).Str("path", indexPath).Msg("failed to read existing index")
		}
		return out
	}

	var existing struct {
		DailySummaries map[string]any `json:"daily_summaries"`
		DailySummary   any            `json:"daily_summary"`
	}
	if err := json.Unmarshal(data, &existing); err != nil {
		g.log.Warn().Err(err).Str("path", indexPath).Msg("failed to parse existing index")
		return out
	}

	now := g.now()
	for rawDate, rawSummary := range existing.DailySummaries {
		date := strings.TrimSpace(rawDate)
		if date == "" {
			continue
		}
		obj, _ := rawSummary.(map[string]any)
		if s, ok := NormalizeExisting(date, obj, now); ok {
			out[date] = s
		}
	}

	if obj, ok := existing.DailySummary.(map[string]any); ok {
		date := record.Text(obj["date"])
		if _, seen := out[date]; date != "" && !seen {
			if s, ok := NormalizeExisting(date, obj, now); ok {
				out[date] = s
			}
		}
	}

	return out
}
