package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	postURL        string
	outJSON        string
	analyzeTimeout time.Duration
	llmProvider    string
	llmModel       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <post text>",
	Short: "Analyze a single social media post for checkable claims",
	Long: `Analyze extracts factual claims from one post, gathers evidence for each
claim across fact-checkers, conflict monitoring organizations, and news
outlets, and grades every claim with a structured verdict.

Fresh cached verdicts for previously seen claims are reused instead of
re-verifying.

Example:
  claimlens analyze "Over 500 civilians were killed in Gaza since October 2023"
  claimlens analyze "..." --url https://twitter.com/user/status/123 --json report.json
  claimlens analyze "..." --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&postURL, "url", "", "source URL of the post (optional)")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write the analysis JSON to this path (default: stdout)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for verdict synthesis (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := buildConfig()
	if llmProvider != "" {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	analysis, err := p.AnalyzePost(ctx, text, postURL)
	if err != nil {
		return fmt.Errorf("analyze post: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d claims\n", len(analysis.Claims))
		fmt.Fprintf(os.Stderr, "✓ Overall credibility: %s\n", analysis.OverallCredibility)
		if analysis.PotentialMisinfo {
			fmt.Fprintln(os.Stderr, "⚠ Potential misinformation detected")
		}
		if analysis.RequiresHumanReview {
			fmt.Fprintln(os.Stderr, "⚠ Flagged for human review")
		}
		fmt.Fprintln(os.Stderr)
	}

	return writeJSON(analysis, outJSON)
}

// writeJSON renders v as indented JSON to path, or stdout when path is empty
func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}
