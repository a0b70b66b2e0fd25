package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var summaryDays int

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize recent fact-checking activity",
	Long: `Summary reports on recently analyzed posts: credibility distribution,
misinformation detections, sensitive topics, verdict cache statistics,
and claims that appeared in more than one post.

Example:
  claimlens summary
  claimlens summary --days 30 --json summary.json`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntVar(&summaryDays, "days", 7, "reporting window in days")
	summaryCmd.Flags().StringVar(&outJSON, "json", "", "write the summary JSON to this path (default: stdout)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, cleanup, err := newPipeline(buildConfig())
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := p.Summarize(ctx, summaryDays)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}

	return writeJSON(summary, outJSON)
}
