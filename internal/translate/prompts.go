// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/papers-archive/pkg/types"
)

// promptPair is a system prompt plus a user prompt template.
type promptPair struct {
	system string
	user   *template.Template
}

var summaryPrompts = map[string]promptPair{
	types.PromptLangZH: {
		system: "你是一名严谨的 AI 论文编辑。请基于论文摘要产出忠实、精炼的英文总结。",
		user: template.Must(template.New("summary-zh").Parse(`请将下面的 abstract 总结为 2-4 句英文。
要求：
- 覆盖问题、方法、关键结果或论文声称的收益。
- 保留术语、模型名、数据集名、指标、数字和缩写。
- 不要使用 markdown、不要分点、不要夸张、不要猜测。
- 若原文未明确给出结果，不要编造。
- 只输出英文总结正文。

Abstract:
{{.Text}}`)),
	},
	types.PromptLangEN: {
		system: "You are a rigorous AI paper editor. Create a faithful and concise English summary from the abstract.",
		user: template.Must(template.New("summary-en").Parse(`Summarize the following abstract in 2-4 English sentences.
Requirements:
- Cover the problem, method, and key result/claimed benefit.
- Keep technical terms, model names, datasets, metrics, numbers, and acronyms.
- No markdown, no bullet points, no hype, no guessing.
- If a result is not explicitly stated, do not invent one.
- Output only the English summary text.

Abstract:
{{.Text}}`)),
	},
}

var translatePrompts = map[string]promptPair{
	types.PromptLangZH: {
		system: "你是一名专业的 AI 论文翻译，负责将英文内容翻译为简体中文。",
		user: template.Must(template.New("translate-zh").Parse(`请将下面的英文 summary 翻译成简体中文。
要求：
- 尽量保留术语、模型名、数据集名、指标、数字和缩写。
- 语义完整准确，不增删事实。
- 语气简洁中性，避免口语化和营销表达。
- 只输出中文译文，不要解释，不要 markdown。

English summary:
{{.Text}}`)),
	},
	types.PromptLangEN: {
		system: "You are an expert AI paper translator. Translate English content into Simplified Chinese.",
		user: template.Must(template.New("translate-en").Parse(`Translate the following English summary into Simplified Chinese.
Requirements:
- Preserve technical terms, model names, datasets, metrics, numbers, and acronyms when possible.
- Keep facts fully accurate; do not add or remove claims.
- Use concise, neutral style.
- Output only the Chinese translation text. No explanation, no markdown.

English summary:
{{.Text}}`)),
	},
}

// NormalizePromptLang maps unknown values to auto.
func NormalizePromptLang(lang string) string {
	switch l := strings.ToLower(strings.TrimSpace(lang)); l {
	case types.PromptLangZH, types.PromptLangEN:
		return l
	default:
		return types.PromptLangAuto
	}
}

// taskPromptLang resolves auto: summaries are prompted in English and
// translations in Chinese.
func taskPromptLang(lang string, summarize bool) string {
	if l := NormalizePromptLang(lang); l != types.PromptLangAuto {
		return l
	}
	if summarize {
		return types.PromptLangEN
	}
	return types.PromptLangZH
}

func (p promptPair) render(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.user.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
