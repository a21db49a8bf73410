package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchSources []string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed documents",
	Long: `Performs semantic search across all indexed documents. Results are
deduplicated per document and ranked by similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVar(&searchSources, "source", nil, "restrict to the named sources")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}

	response, err := searchService.Search(cmd.Context(), args[0], domain.SearchOptions{
		Limit:   limit,
		Sources: searchSources,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, response)
	}
	return outputSearchText(cmd, response)
}

func outputSearchJSON(cmd *cobra.Command, response *domain.SearchResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, response *domain.SearchResponse) error {
	if len(response.Results) == 0 {
		cmd.Println("No results.")
		return nil
	}

	for i, result := range response.Results {
		cmd.Printf("%d. %s  [%s, %.2f]\n", i+1, result.Title, result.Source, result.Score)
		if result.Path != "" {
			cmd.Printf("   %s\n", result.Path)
		}
		cmd.Printf("   %s\n", result.Snippet)
		if result.URL != "" {
			cmd.Printf("   %s\n", result.URL)
		}
		cmd.Println()
	}
	cmd.Printf("%d of %d results in %.0fms\n",
		len(response.Results), response.TotalFound, response.SearchTimeMs)
	return nil
}
