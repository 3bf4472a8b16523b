package types

import "time"

// Translation provider names.
const (
	ProviderAuto       = "auto"
	ProviderOpenRouter = "openrouter"
	ProviderDummy      = "dummy"
	ProviderLocal      = "local"
)

// Prompt languages for the remote translator.
const (
	PromptLangAuto = "auto"
	PromptLangZH   = "zh"
	PromptLangEN   = "en"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AIConfig holds settings for stages that call the chat-completion API.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the translator: auto, openrouter, dummy (alias local).
	Provider string `json:"provider" yaml:"provider"`

	// Model is the chat model identifier (e.g. "moonshotai/kimi-k2.5").
	Model string `json:"model" yaml:"model"`

	// SummaryModel overrides Model for daily narrative summaries.
	SummaryModel string `json:"summary_model,omitempty" yaml:"summary_model,omitempty"`

	// APIKey is the bearer token for the API. Empty means no credential.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Endpoint is the chat-completions URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// AppName and AppURL are sent as X-Title and HTTP-Referer.
	AppName string `json:"app_name" yaml:"app_name"`
	AppURL  string `json:"app_url" yaml:"app_url"`

	// MaxAttempts bounds attempts per call, including the first (default 4).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RequestsPerSecond limits outgoing calls per client. Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// TranslationConfig holds settings for the translation stage.
type TranslationConfig struct {
	AIConfig `yaml:",inline"`

	// DataDir is the root of the per-paper record tree.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Workers is the requested worker count (clamped to 1..12).
	Workers int `json:"workers" yaml:"workers"`

	// PromptLang is auto, zh or en.
	PromptLang string `json:"prompt_lang" yaml:"prompt_lang"`

	// Date limits processing to one listing date when set.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

// VisibilityConfig holds the publication-delay settings.
type VisibilityConfig struct {
	// Timezone is an IANA zone name (default Asia/Shanghai).
	Timezone string `json:"timezone" yaml:"timezone"`

	ReleaseHour   int `json:"release_hour" yaml:"release_hour"`
	ReleaseMinute int `json:"release_minute" yaml:"release_minute"`

	// DelayDays is the number of days after the listing date before release.
	DelayDays int `json:"delay_days" yaml:"delay_days"`

	// Now overrides the current time (ISO 8601). Empty uses the clock.
	Now string `json:"now,omitempty" yaml:"now,omitempty"`
}

// IndexConfig holds settings for the index build stage.
type IndexConfig struct {
	// DataDir is the root of the per-paper record tree.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// OutDir receives index.json, search_index.json and dates/.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// SearchDB is the optional SQLite search database path.
	SearchDB string `json:"search_db,omitempty" yaml:"search_db,omitempty"`

	Visibility VisibilityConfig `json:"visibility" yaml:"visibility"`

	// AI configures the narrative summary call.
	AI AIConfig `json:"ai" yaml:"ai"`
}

// ArchiveConfig groups all stage configurations.
type ArchiveConfig struct {
	Translation TranslationConfig `json:"translation" yaml:"translation"`
	Index       IndexConfig       `json:"index" yaml:"index"`
}
