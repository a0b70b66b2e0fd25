package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kfadel/claimlens/internal/store"
)

var retentionDays int

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Prune stale entries from the verdict database",
	Long: `Sweep deletes cached verdicts older than the retention window that were
accessed fewer than twice, along with post analyses past retention.
Frequently reused verdicts are kept regardless of age.

Example:
  claimlens sweep
  claimlens sweep --retention-days 60`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().IntVar(&retentionDays, "retention-days", 0, "retention window in days (default: config retention_days)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := buildConfig()
	if retentionDays <= 0 {
		retentionDays = cfg.Store.RetentionDays
	}

	verdictDB, err := store.Open(cfg.Store.Path, cfg.Store.FreshnessDays)
	if err != nil {
		return fmt.Errorf("open verdict store: %w", err)
	}
	defer func() { _ = verdictDB.Close() }()

	removed, err := verdictDB.Sweep(ctx, retentionDays)
	if err != nil {
		return fmt.Errorf("sweep store: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Removed %d stale rows (retention: %d days)\n", removed, retentionDays)
	return nil
}
