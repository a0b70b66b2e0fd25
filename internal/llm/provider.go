// Package llm abstracts the external text-completion providers used for
// verdict synthesis.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kfadel/claimlens/internal/model"
)

// Provider is one completion backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a prompt and returns the raw model response. May fail;
	// callers are expected to catch and degrade.
	Complete(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// systemPrompt frames every synthesis request
const systemPrompt = "You are a careful fact-checking assistant. You weigh the provided " +
	"evidence objectively, distinguish verified facts from disputed claims, and always " +
	"answer in the exact structured format requested."

// Config holds provider configuration
type Config struct {
	Provider   string // openai, anthropic, ollama, ""
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    int // seconds
	MaxTokens  int
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts the application LLM config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxTokens:  cfg.MaxTokens,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	}
}

// NewProvider creates a provider from configuration. An empty provider name
// returns (nil, nil): synthesis disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
