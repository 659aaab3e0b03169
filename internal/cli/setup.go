package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dchernyak/cvproof/internal/biblio"
	"github.com/dchernyak/cvproof/internal/cache"
	"github.com/dchernyak/cvproof/internal/classify"
	"github.com/dchernyak/cvproof/internal/llm"
	"github.com/dchernyak/cvproof/internal/model"
	"github.com/dchernyak/cvproof/internal/pipeline"
	"github.com/dchernyak/cvproof/internal/worker"
)

// resolveAPIKey pulls the provider's API key from the environment. Keys are
// never read from the config file.
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	return nil
}

// newPipeline assembles the full verification pipeline from configuration.
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	provider, err := llm.NewProvider(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("an LLM provider is required for extraction")
	}

	classifier, err := loadClassifier(cfg)
	if err != nil {
		return nil, err
	}

	pacer := worker.NewPacer(cfg.Pacing.MinCallInterval, cfg.Pacing.TokensPerMinute)
	orch := pipeline.NewOrchestrator(provider, pacer, cfg.LLM, cfg.Chunking.MaxChars, cfg.Output.Verbose)

	verifier, err := newVerifier(cfg)
	if err != nil {
		return nil, err
	}

	return pipeline.New(cfg, classifier, orch, verifier), nil
}

// newVerifier builds the verification backend for the configured mode. A nil
// return with no error selects LLM-only verification.
func newVerifier(cfg *model.Config) (pipeline.CandidateVerifier, error) {
	switch cfg.Search.Mode {
	case "llm":
		return nil, nil

	case "crossref", "":
		var opts []biblio.CrossrefOption
		if cfg.Search.MailTo != "" {
			opts = append(opts, biblio.WithMailTo(cfg.Search.MailTo))
		}
		if cfg.Cache.Enabled {
			opts = append(opts, biblio.WithCache(newSearchCache(cfg), cfg.Cache.TTL))
		}
		client := biblio.NewCrossrefClient(cfg.Search.BaseURL, cfg.Search.UserAgent, cfg.Search.Timeout, opts...)
		return biblio.NewVerifier(client, cfg.Search.MaxResults), nil

	default:
		return nil, fmt.Errorf("unknown verification mode: %s (supported: crossref, llm)", cfg.Search.Mode)
	}
}

// newSearchCache builds a layered memory+disk cache, degrading to memory-only
// when no usable cache directory exists.
func newSearchCache(cfg *model.Config) cache.Cache {
	dir := cfg.Cache.Dir
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".cvproof", "cache")
		}
	}
	if dir == "" {
		return cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}
	return cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
}

// loadClassifier loads the trained header model when one is configured. With
// no model the pipeline still runs; it just cannot split CVs into sections.
func loadClassifier(cfg *model.Config) (*classify.Classifier, error) {
	if cfg.Classifier.ModelPath == "" {
		return nil, nil
	}

	headers := classify.DefaultHeaderList()
	if cfg.Classifier.HeadersPath != "" {
		loaded, err := classify.LoadHeaderList(cfg.Classifier.HeadersPath)
		if err != nil {
			return nil, err
		}
		headers = loaded
	}

	classifier := classify.NewClassifier(headers)
	if err := classifier.Load(cfg.Classifier.ModelPath); err != nil {
		return nil, err
	}
	return classifier, nil
}

// writeOutputs renders the result to the requested files.
func writeOutputs(result model.Result, jsonPath, mdPath string, includeFooter bool) error {
	if jsonPath != "" {
		renderer := &pipeline.JSONRenderer{Indent: true}
		data, err := renderer.Render(result)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", jsonPath, err)
		}
	}

	if mdPath != "" {
		renderer := &pipeline.MarkdownRenderer{IncludeFooter: includeFooter}
		data, err := renderer.Render(result)
		if err != nil {
			return fmt.Errorf("render Markdown: %w", err)
		}
		if err := os.WriteFile(mdPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", mdPath, err)
		}
	}

	return nil
}
