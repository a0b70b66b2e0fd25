// Package cli implements the claimlens command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kfadel/claimlens/internal/extract"
	"github.com/kfadel/claimlens/internal/llm"
	"github.com/kfadel/claimlens/internal/model"
	"github.com/kfadel/claimlens/internal/pipeline"
	"github.com/kfadel/claimlens/internal/search"
	"github.com/kfadel/claimlens/internal/sources"
	"github.com/kfadel/claimlens/internal/store"
	"github.com/kfadel/claimlens/internal/synth"
	"github.com/kfadel/claimlens/internal/verify"
)

var (
	cfgFile string
	verbose bool
	dbPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimlens",
	Short: "ClaimLens - Fact-checking pipeline for conflict-related social media posts",
	Long: `ClaimLens extracts checkable factual claims from social media posts about
the Palestine/Israel conflict, gathers evidence from fact-checkers, news
outlets, and monitoring organizations, and grades each claim with a
structured verdict.

It does not decide what is true on its own: verdicts always carry their
evidence trail, confidence grade, and limitations, and sensitive topics
are flagged for human review rather than settled automatically.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for ClaimLens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimlens v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "verdict database path (default: claimlens.db)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.claimlens")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMLENS_*
	viper.SetEnvPrefix("CLAIMLENS")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig layers the config file and environment over the defaults
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("search.api_key"); v != "" {
		cfg.Search.APIKey = v
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("BING_SEARCH_API_KEY")
	}
	if v := viper.GetString("search.base_url"); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := viper.GetString("search.market"); v != "" {
		cfg.Search.Market = v
	}
	if v := viper.GetString("search.freshness"); v != "" {
		cfg.Search.Freshness = v
	}
	if v := viper.GetString("store.path"); v != "" {
		cfg.Store.Path = v
	}
	if v := viper.GetInt("store.freshness_days"); v > 0 {
		cfg.Store.FreshnessDays = v
	}
	if v := viper.GetInt("store.retention_days"); v > 0 {
		cfg.Store.RetentionDays = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetInt("concurrency.batch_workers"); v > 0 {
		cfg.Concurrency.BatchWorkers = v
	}
	cfg.Output.Verbose = verbose

	return cfg
}

// configureLLM fills in provider credentials from the environment
func configureLLM(cfg *model.Config, provider, modelName string) error {
	cfg.LLM.Provider = provider
	if modelName != "" {
		cfg.LLM.Model = modelName
	}

	switch provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// newPipeline assembles the analysis pipeline from configuration. The
// returned cleanup closes the verdict store.
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, func(), error) {
	verdictDB, err := store.Open(cfg.Store.Path, cfg.Store.FreshnessDays)
	if err != nil {
		return nil, nil, fmt.Errorf("open verdict store: %w", err)
	}
	cached := store.NewCachedStore(verdictDB, cfg.Store.MemoryTTL, cfg.Store.MemoryCleanup)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		_ = verdictDB.Close()
		return nil, nil, fmt.Errorf("configure LLM provider: %w", err)
	}
	if provider == nil && verbose {
		fmt.Fprintln(os.Stderr, "No LLM provider configured; verdicts will degrade to UNVERIFIABLE")
	}

	gateway := search.NewHTTPGateway(cfg.Search, cfg.Output.Verbose)
	orchestrator := verify.NewOrchestrator(gateway, sources.NewRegistry(), cfg.Search.Timeout)
	synthesizer := synth.NewSynthesizer(provider)

	p := pipeline.New(extract.NewExtractor(), orchestrator, synthesizer, cached, cfg.Output.Verbose)
	cleanup := func() { _ = verdictDB.Close() }
	return p, cleanup, nil
}
