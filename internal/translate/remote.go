// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/papers-archive/internal/chat"
	"github.com/pdiddy/papers-archive/internal/record"
)

// Sampling temperatures per task.
const (
	summarizeTemperature = 0.15
	translateTemperature = 0.05
)

// RemoteTranslator calls a chat-completions API.
type RemoteTranslator struct {
	client     *chat.Client
	transport  http.RoundTripper
	promptLang string
}

// NewRemote returns a remote translator. Worker copies made by ForWorker
// get their own http.Client on top of transport; a nil transport keeps
// the client's own.
func NewRemote(client *chat.Client, transport http.RoundTripper, promptLang string) *RemoteTranslator {
	return &RemoteTranslator{
		client:     client,
		transport:  transport,
		promptLang: NormalizePromptLang(promptLang),
	}
}

func (r *RemoteTranslator) Name() string { return "openrouter" }

func (r *RemoteTranslator) Remote() bool { return true }

// ForWorker returns a translator with a dedicated http.Client sharing the
// pooled transport.
func (r *RemoteTranslator) ForWorker() Translator {
	transport := r.transport
	if transport == nil {
		transport = r.client.HTTP.Transport
	}
	h := &http.Client{Timeout: r.client.HTTP.Timeout, Transport: transport}
	return &RemoteTranslator{
		client:     r.client.WithHTTPClient(h),
		transport:  transport,
		promptLang: r.promptLang,
	}
}

func (r *RemoteTranslator) SummarizeAbstract(ctx context.Context, text string) (string, error) {
	return r.complete(ctx, summaryPrompts[taskPromptLang(r.promptLang, true)], text, summarizeTemperature)
}

func (r *RemoteTranslator) Translate(ctx context.Context, text string) (string, error) {
	return r.complete(ctx, translatePrompts[taskPromptLang(r.promptLang, false)], text, translateTemperature)
}

func (r *RemoteTranslator) complete(ctx context.Context, p promptPair, text string, temperature float64) (string, error) {
	content := record.NormalizeText(text)
	if content == "" {
		return "", nil
	}
	user, err := p.render(content)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return r.client.Complete(ctx, []chat.Message{
		{Role: "system", Content: p.system},
		{Role: "user", Content: user},
	}, temperature)
}
