package model

import "time"

// Config holds the full claimlens configuration
type Config struct {
	Search      SearchConfig      `yaml:"search"`
	LLM         LLMConfig         `yaml:"llm"`
	Store       StoreConfig       `yaml:"store"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// SearchConfig configures the search gateway client
type SearchConfig struct {
	APIKey            string        `yaml:"api_key"`             // Empty key switches the client to mock results
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`             // Per-call budget, mandatory upper bound
	Market            string        `yaml:"market"`
	Freshness         string        `yaml:"freshness"`           // Bing freshness hint (Day, Week, Month)
	RequestsPerSecond float64       `yaml:"requests_per_second"` // Per-domain rate limit
	Burst             int           `yaml:"burst"`
}

// LLMConfig configures the verdict synthesizer provider
type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai, anthropic, ollama; empty disables synthesis
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Timeout    int    `yaml:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
	NoProxy    string `yaml:"no_proxy"`
}

// StoreConfig configures the verdict cache and analysis store
type StoreConfig struct {
	Path           string        `yaml:"path"`            // SQLite database path
	FreshnessDays  int           `yaml:"freshness_days"`  // Cached verdicts older than this are not reused
	RetentionDays  int           `yaml:"retention_days"`  // Sweep deletes low-access entries older than this
	MemoryTTL      time.Duration `yaml:"memory_ttl"`      // Hot-layer TTL for verdict lookups
	MemoryCleanup  time.Duration `yaml:"memory_cleanup"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"` // Concurrent posts in batch mode
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BaseURL:           "https://api.bing.microsoft.com/v7.0/search",
			Timeout:           10 * time.Second,
			Market:            "en-US",
			Freshness:         "Month",
			RequestsPerSecond: 3,
			Burst:             5,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 1000,
		},
		Store: StoreConfig{
			Path:          "claimlens.db",
			FreshnessDays: 30,
			RetentionDays: 90,
			MemoryTTL:     30 * time.Minute,
			MemoryCleanup: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{},
	}
}
