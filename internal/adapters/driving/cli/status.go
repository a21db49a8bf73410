package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [source-id]",
	Short: "Show synchronisation status",
	Long: `Reports sync status per source: live progress for an active run, or
the outcome of the last one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var ids []string
	if len(args) > 0 {
		ids = args
	} else {
		sources, err := sourceStore.List(ctx)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			cmd.Println("No sources configured.")
			return nil
		}
		for _, source := range sources {
			ids = append(ids, source.ID)
		}
	}

	for _, id := range ids {
		status, err := syncOrchestrator.Status(ctx, id)
		if err != nil {
			return err
		}

		cmd.Printf("%s: %s", status.SourceID, status.Status)
		if status.DocumentsProcessed > 0 {
			cmd.Printf(" (%d documents processed", status.DocumentsProcessed)
			if status.ErrorCount > 0 {
				cmd.Printf(", %d errors", status.ErrorCount)
			}
			cmd.Printf(")")
		} else if status.DocumentCount > 0 {
			cmd.Printf(" (%d documents last run)", status.DocumentCount)
		}
		if !status.LastSyncedAt.IsZero() {
			cmd.Printf(", last synced %s", status.LastSyncedAt.Format("2006-01-02 15:04:05"))
		}
		cmd.Println()
		if status.Error != "" {
			cmd.Printf("  last error: %s\n", status.Error)
		}
	}
	return nil
}
