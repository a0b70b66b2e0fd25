package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kfadel/claimlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple posts from a file in parallel",
	Long: `Batch processes multiple posts concurrently:
- Read posts from input file (one per line, # lines skipped)
- Analyze posts in parallel with configurable worker count
- Claims already verified for earlier posts are served from the cache
- Write one analysis JSON per post

Example:
  claimlens batch posts.txt
  claimlens batch posts.txt --concurrency 8 --output-dir ./analyses
  claimlens batch posts.txt --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: config batch_workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimlens-analyses", "output directory for analysis files")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for verdict synthesis (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig()
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if llmProvider != "" {
		if err := configureLLM(cfg, llmProvider, llmModel); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(os.Stderr, "⚙️  Reading posts from %s...\n", file)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Analyzed %d posts with %d workers\n\n", len(results), cfg.Concurrency.BatchWorkers)

	successCount := 0
	failureCount := 0
	misinfoCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %.60q: %v\n", result.Text, result.Error)
			continue
		}
		successCount++

		path := filepath.Join(outputDir, "post-"+result.Analysis.PostID+".json")
		if err := writeJSON(result.Analysis, path); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			continue
		}

		marker := "✓"
		if result.Analysis.PotentialMisinfo {
			marker = "⚠"
			misinfoCount++
		}
		fmt.Fprintf(os.Stderr, "%s %d claims, credibility %s: %.60q\n",
			marker, len(result.Analysis.Claims), result.Analysis.OverallCredibility, result.Text)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:            %d posts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:          %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:         %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Possible misinfo: %d\n", misinfoCount)
	fmt.Fprintf(os.Stderr, "  Output:           %s\n", outputDir)

	return nil
}
