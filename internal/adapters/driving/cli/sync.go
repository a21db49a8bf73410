package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/services"
)

var (
	syncFull  bool
	syncWatch bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Synchronise documents from sources",
	Long: `Triggers document synchronisation from configured sources.
If a source ID is provided, only that source is synchronised.
Otherwise, all sources are synchronised in turn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "ignore the saved cursor and re-sync everything")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running and sync on the configured interval (also enabled via config)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) > 0 {
		result, err := syncOrchestrator.Sync(ctx, args[0], syncFull)
		if err != nil {
			return err
		}
		printResult(cmd, result)
	} else {
		results, err := syncOrchestrator.SyncAll(ctx, syncFull)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			cmd.Println("No sources configured. Add one with: sift sources add")
		}
		for i := range results {
			printResult(cmd, &results[i])
		}
	}

	if syncWatch || cfg.Scheduler.Enabled {
		return watch(cmd)
	}
	return nil
}

// watch runs the background scheduler until interrupted.
func watch(cmd *cobra.Command) error {
	scheduler := services.NewScheduler(syncOrchestrator, schedulerInterval(cfg.Scheduler))
	if err := scheduler.Start(cmd.Context()); err != nil {
		return err
	}
	defer scheduler.Stop()

	cmd.Printf("Watching, syncing every %s. Press Ctrl+C to stop.\n", schedulerInterval(cfg.Scheduler))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-cmd.Context().Done():
	}
	return nil
}

func printResult(cmd *cobra.Command, result *domain.SyncResult) {
	cmd.Printf("%s: added %d, updated %d, deleted %d in %s\n",
		result.Source, result.Added, result.Updated, result.Deleted,
		result.Duration.Round(10*time.Millisecond))

	for _, msg := range result.Errors {
		cmd.Printf("  error: %s\n", msg)
	}
	if !result.Success {
		cmd.Printf("  finished with %d errors\n", len(result.Errors))
	}
}
