package model

import "time"

// Config is the complete cvproof configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Classifier  ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Chunking    ChunkingConfig    `yaml:"chunking" mapstructure:"chunking"`
	Pacing      PacingConfig      `yaml:"pacing" mapstructure:"pacing"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the generative-text collaborator.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"-"` // Env only, never written to disk
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// SearchConfig configures the bibliographic search collaborator.
type SearchConfig struct {
	// Mode selects verification strategy: "crossref" queries the search API,
	// "llm" trusts the collaborator's self-reported flags.
	Mode       string        `yaml:"mode" mapstructure:"mode"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	MailTo     string        `yaml:"mailto,omitempty" mapstructure:"mailto"`
}

// ClassifierConfig points at the trained model and the known-header asset.
type ClassifierConfig struct {
	ModelPath   string `yaml:"model_path" mapstructure:"model_path"`
	HeadersPath string `yaml:"headers_path" mapstructure:"headers_path"`
}

// ChunkingConfig bounds the size of a single extraction unit.
type ChunkingConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// PacingConfig throttles calls to the generative-text service.
type PacingConfig struct {
	MinCallInterval time.Duration `yaml:"min_call_interval" mapstructure:"min_call_interval"`
	TokensPerMinute int           `yaml:"tokens_per_minute" mapstructure:"tokens_per_minute"`
}

// ConcurrencyConfig bounds fan-out across independent extraction units.
type ConcurrencyConfig struct {
	ExtractionWorkers int `yaml:"extraction_workers" mapstructure:"extraction_workers"`
	BatchWorkers      int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// CacheConfig configures caching of bibliographic search responses.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "",
			Timeout:     60,
			MaxTokens:   4000,
			Temperature: 0.1,
		},
		Search: SearchConfig{
			Mode:       "crossref",
			BaseURL:    "https://api.crossref.org",
			MaxResults: 5,
			Timeout:    15 * time.Second,
			UserAgent:  "cvproof/0.2 (+https://github.com/dchernyak/cvproof)",
		},
		Classifier: ClassifierConfig{},
		Chunking: ChunkingConfig{
			MaxChars: 15000,
		},
		Pacing: PacingConfig{
			MinCallInterval: 4400 * time.Millisecond,
			TokensPerMinute: 90000,
		},
		Concurrency: ConcurrencyConfig{
			ExtractionWorkers: 3,
			BatchWorkers:      2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
