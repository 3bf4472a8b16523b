// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate enriches stored paper records with an English summary
// and its Chinese translation.
//
// A Translator is chosen once per run by New. The local variant never
// touches the network; the remote variant calls a chat-completions API.
// Run fans record files out to a bounded worker pool, and each worker
// edits its file in place.
package translate

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/papers-archive/internal/chat"
	"github.com/pdiddy/papers-archive/pkg/types"
)

// Translator abstracts the summarization and translation backend so tests
// can supply a mock.
type Translator interface {
	// Name identifies the provider in logs.
	Name() string

	// Remote reports whether calls go over the network. Local translators
	// run with a single worker.
	Remote() bool

	// ForWorker returns a translator owned by one worker goroutine.
	ForWorker() Translator

	// SummarizeAbstract condenses an abstract into a short English summary.
	SummarizeAbstract(ctx context.Context, text string) (string, error)

	// Translate renders an English summary in Simplified Chinese.
	Translate(ctx context.Context, text string) (string, error)
}

// New selects a translator for cfg. Provider "auto" picks the remote
// translator when an API key is configured; "openrouter" without a key
// degrades to the local translator with a warning; anything else is local.
func New(cfg types.TranslationConfig, log zerolog.Logger) Translator {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	hasKey := strings.TrimSpace(cfg.APIKey) != ""

	switch provider {
	case types.ProviderOpenRouter:
		if !hasKey {
			log.Warn().Msg("OPENROUTER_API_KEY not set, using local translator")
			return NewLocal()
		}
		return newRemoteFromConfig(cfg, log)
	case types.ProviderAuto, "":
		if hasKey {
			return newRemoteFromConfig(cfg, log)
		}
		log.Info().Msg("no API key detected, using local translator")
		return NewLocal()
	case types.ProviderDummy, types.ProviderLocal:
		return NewLocal()
	default:
		log.Warn().Str("provider", cfg.Provider).Msg("unknown provider, using local translator")
		return NewLocal()
	}
}

func newRemoteFromConfig(cfg types.TranslationConfig, log zerolog.Logger) *RemoteTranslator {
	workers := ClampWorkers(cfg.Workers)
	transport := chat.NewTransport(workers)
	client := chat.New(cfg.AIConfig, newHTTPClient(cfg.AIConfig, transport), log)
	log.Info().
		Str("model", client.Model).
		Str("prompt_lang", NormalizePromptLang(cfg.PromptLang)).
		Int("pool_size", chat.PoolSize(workers)).
		Msg("using OpenRouter translator")
	return NewRemote(client, transport, cfg.PromptLang)
}

func newHTTPClient(cfg types.AIConfig, transport http.RoundTripper) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = chat.DefaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
