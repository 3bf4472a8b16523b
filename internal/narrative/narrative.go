// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package narrative writes the per-day digest shown above each date's
// paper list. The digest comes from the chat API when possible and from a
// deterministic statistics template otherwise.
package narrative

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/papers-archive/internal/record"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Prompt and template limits.
const (
	promptPapers     = 10
	promptTitleLimit = 140
	promptGistLimit  = 160
	notablePapers    = 3
	notableTitle     = 88
)

// SystemPrompt is sent with every narrative request.
const SystemPrompt = "你是严谨的 AI 研究日报编辑。你必须严格遵循输出格式，禁止编造信息。"

var (
	aiSummaryLinePattern = regexp.MustCompile(`(?im)^\s*-\s*Papers with AI Summary:[^\n]*$`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
)

// Stats are the per-day figures quoted by every digest.
type Stats struct {
	Total      int
	Upvotes    int
	WithGithub int
}

// ComputeStats derives Stats from a day's papers.
func ComputeStats(papers []types.PaperRecord) Stats {
	s := Stats{Total: len(papers)}
	for _, p := range papers {
		s.Upvotes += p.Upvotes
		if strings.TrimSpace(p.GithubURL) != "" {
			s.WithGithub++
		}
	}
	return s
}

// topPapers returns up to n papers by upvotes, ties by paper_id, both
// descending.
func topPapers(papers []types.PaperRecord, n int) []types.PaperRecord {
	ranked := make([]types.PaperRecord, len(papers))
	copy(ranked, papers)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Upvotes != ranked[j].Upvotes {
			return ranked[i].Upvotes > ranked[j].Upvotes
		}
		return ranked[i].PaperID > ranked[j].PaperID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// StripAISummaryMetric removes "- Papers with AI Summary: ..." lines left
// by older prompt versions and collapses the blank runs they leave.
func StripAISummaryMetric(content string) string {
	text := aiSummaryLinePattern.ReplaceAllString(content, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func writeStats(b *strings.Builder, date string, s Stats) {
	fmt.Fprintf(b, "- Date: %s\n", date)
	fmt.Fprintf(b, "- Total Papers: %d\n", s.Total)
	fmt.Fprintf(b, "- Total Upvotes: %d\n", s.Upvotes)
	fmt.Fprintf(b, "- Papers with GitHub: %d\n", s.WithGithub)
}

// FallbackContent renders the deterministic digest for a day.
func FallbackContent(date string, papers []types.PaperRecord) string {
	var b strings.Builder
	s := ComputeStats(papers)
	b.WriteString("Overview\n")
	writeStats(&b, date, s)
	b.WriteString("\nKey Takeaways\n")

	if len(papers) == 0 {
		b.WriteString("1. No papers were fetched for this date.\n\n")
		b.WriteString("Notable Papers\n- N/A")
		return StripAISummaryMetric(b.String())
	}

	fmt.Fprintf(&b, "1. %s has %d papers with broad coverage across multiple AI subfields.\n", date, s.Total)
	fmt.Fprintf(&b, "2. Community attention is concentrated on a few papers (total 👍 %d).\n", s.Upvotes)
	fmt.Fprintf(&b, "3. %d papers provide GitHub links, indicating practical reproducibility focus.\n\n", s.WithGithub)
	b.WriteString("Notable Papers\n")

	top := topPapers(papers, notablePapers)
	lines := make([]string, len(top))
	for i, p := range top {
		lines[i] = fmt.Sprintf("- [%s] %s (👍%d)", p.PaperID, record.TrimText(p.Title, notableTitle), p.Upvotes)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return StripAISummaryMetric(b.String())
}

// Prompt renders the user prompt for a day. Headings and field order are
// parsed by the site renderer and must not change.
func Prompt(date string, papers []types.PaperRecord) string {
	s := ComputeStats(papers)

	entries := make([]string, 0, promptPapers)
	for _, p := range topPapers(papers, promptPapers) {
		gist := record.TrimText(p.SummaryEN, promptGistLimit)
		if gist == "" {
			gist = record.TrimText(p.Abstract, promptGistLimit)
		}
		entries = append(entries, fmt.Sprintf("- [%s] %s | upvotes=%d | gist=%s",
			p.PaperID, record.TrimText(p.Title, promptTitleLimit), p.Upvotes, gist))
	}

	var b strings.Builder
	b.WriteString("任务：基于给定论文列表生成用于网页展示的中文日度总览。\n")
	b.WriteString("输出要求：必须是纯文本，严格按模板，禁止额外段落。\n\n")
	b.WriteString("模板（字段名和顺序不可修改）：\n")
	b.WriteString("Overview\n")
	b.WriteString("- Date: <YYYY-MM-DD>\n")
	b.WriteString("- Total Papers: <number>\n")
	b.WriteString("- Total Upvotes: <number>\n")
	b.WriteString("- Papers with GitHub: <number>\n")
	b.WriteString("\n")
	b.WriteString("Key Takeaways\n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, "%d. <一句话，总体趋势>\n", i)
	}
	b.WriteString("\n")
	b.WriteString("Notable Papers\n")
	for i := 0; i < 5; i++ {
		b.WriteString("- [paper_id] <title> (👍<upvotes>): <一句话亮点>\n")
	}
	b.WriteString("\n")
	b.WriteString("约束：\n")
	b.WriteString("1) 仅使用给定条目与统计信息，不得编造论文、数字或结论。\n")
	b.WriteString("2) Key Takeaways 必须恰好 4 条；Notable Papers 必须恰好 5 条。\n")
	b.WriteString("3) 优先覆盖 upvotes 高、信息密度高、主题代表性强的论文。\n")
	b.WriteString("4) 保留关键英文术语、模型名、数据集名和缩写（如 RLHF、VLM、Diffusion）。\n")
	b.WriteString("5) 语言客观、简洁，避免营销化表达。\n")
	b.WriteString("6) 若某信息缺失，请明确写“信息不足”，不要猜测。\n\n")
	b.WriteString("统计信息（可直接使用）:\n")
	writeStats(&b, date, s)
	b.WriteString("\n论文条目:\n")
	b.WriteString(strings.Join(entries, "\n"))
	b.WriteString("\n")
	return b.String()
}
