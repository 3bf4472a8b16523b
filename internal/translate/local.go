// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/papers-archive/internal/record"
)

// DummyMarker prefixes every local "translation".
const DummyMarker = "[DUMMY-TRANSLATION]"

// localSummaryLimit is the rune budget of a local summary.
const localSummaryLimit = 520

// placeholderPattern matches template placeholders such as "$abstract".
var placeholderPattern = regexp.MustCompile(`^\$[0-9a-zA-Z]+$`)

// minMeaningfulAbstract is the rune length below which an abstract is not
// worth summarizing.
const minMeaningfulAbstract = 48

// MeaningfulAbstract reports whether an abstract is worth summarizing: not
// empty, not a placeholder, and at least 48 runes.
func MeaningfulAbstract(s string) bool {
	text := record.NormalizeText(s)
	if text == "" || placeholderPattern.MatchString(text) {
		return false
	}
	return utf8.RuneCountInString(text) >= minMeaningfulAbstract
}

// splitSentences splits normalized text after '.', '!' or '?' when followed
// by whitespace.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && text[i+1] == ' ' {
				parts = append(parts, text[start:i+1])
				start = i + 2
			}
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// LocalTranslator keeps the pipeline runnable without an API key. It never
// calls the network.
type LocalTranslator struct{}

// NewLocal returns the local translator.
func NewLocal() *LocalTranslator {
	return &LocalTranslator{}
}

func (l *LocalTranslator) Name() string { return "dummy" }

func (l *LocalTranslator) Remote() bool { return false }

func (l *LocalTranslator) ForWorker() Translator { return l }

// SummarizeAbstract returns the first three sentences, trimmed to the
// local summary budget.
func (l *LocalTranslator) SummarizeAbstract(_ context.Context, text string) (string, error) {
	cleaned := record.NormalizeText(text)
	if cleaned == "" {
		return "", nil
	}
	var picked []string
	for _, p := range splitSentences(cleaned) {
		if p = strings.TrimSpace(p); p != "" {
			picked = append(picked, p)
		}
		if len(picked) == 3 {
			break
		}
	}
	concise := strings.Join(picked, " ")
	if concise == "" {
		concise = cleaned
	}
	return record.TrimText(concise, localSummaryLimit), nil
}

// Translate marks the text as untranslated and passes it through.
func (l *LocalTranslator) Translate(_ context.Context, text string) (string, error) {
	cleaned := record.NormalizeText(text)
	if cleaned == "" {
		return "", nil
	}
	return DummyMarker + " 未配置真实翻译服务，以下保留英文原文。\n" + cleaned, nil
}
