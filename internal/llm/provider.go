// Package llm isolates the generative-text collaborator behind one narrow
// interface. Everything it returns is untrusted free text; the recovery
// parser in this package turns it back into structured records.
package llm

import "context"

// Provider defines the interface for generative-text providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a prompt and returns the raw completion text. No
	// contract on output validity.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is the input for one generative call.
type CompletionRequest struct {
	Prompt      string
	Model       string // Overrides the configured model when set
	MaxTokens   int
	Temperature float32
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai" or "" (disabled).
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for hosted providers.
	APIKey string

	// BaseURL for custom endpoints.
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens for response generation.
	MaxTokens int

	// Temperature; extraction wants near-deterministic output.
	Temperature float32
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    "",
		Timeout:     60,
		MaxTokens:   4000,
		Temperature: 0.1,
	}
}
