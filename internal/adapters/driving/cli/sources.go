package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/core/domain"
)

var (
	addType   string
	addName   string
	addConfig []string
	addToken  string
	addAPIKey string
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage configured sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <source-id>",
	Short: "Add a source",
	Long: `Registers a source. Connector-specific settings are passed as repeated
--set key=value flags, e.g.:

  sift sources add notes --type localfs --set root=/home/dev/notes`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <source-id>",
	Short: "Remove a source and its sync state",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesAddCmd.Flags().StringVar(&addType, "type", "", "connector type (required)")
	sourcesAddCmd.Flags().StringVar(&addName, "name", "", "display name")
	sourcesAddCmd.Flags().StringArrayVar(&addConfig, "set", nil, "connector setting as key=value")
	sourcesAddCmd.Flags().StringVar(&addToken, "token", "", "access token")
	sourcesAddCmd.Flags().StringVar(&addAPIKey, "api-key", "", "API key")
	_ = sourcesAddCmd.MarkFlagRequired("type")

	sourcesCmd.AddCommand(sourcesListCmd, sourcesAddCmd, sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	sources, err := sourceStore.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	for _, source := range sources {
		count, err := docStore.Count(cmd.Context(), source.ID)
		if err != nil {
			return err
		}
		cmd.Printf("%s  type=%s  documents=%d", source.ID, source.Type, count)
		if source.Name != "" {
			cmd.Printf("  (%s)", source.DisplayName())
		}
		cmd.Println()
	}
	return nil
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	config := make(map[string]string, len(addConfig))
	for _, pair := range addConfig {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("%w: --set %q is not key=value", domain.ErrInvalidInput, pair)
		}
		config[key] = value
	}

	source := domain.Source{
		ID:     args[0],
		Type:   addType,
		Name:   addName,
		Config: config,
		Credentials: domain.Credentials{
			AccessToken: addToken,
			APIKey:      addAPIKey,
		},
	}

	if err := sourceStore.Save(cmd.Context(), source); err != nil {
		return err
	}
	cmd.Printf("Source %s added. Run: sift sync %s\n", source.ID, source.ID)
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	if err := sourceStore.Delete(ctx, id); err != nil {
		return err
	}
	if err := store.SyncStateStore().Delete(ctx, id); err != nil {
		return err
	}

	cmd.Printf("Source %s removed.\n", id)
	return nil
}
