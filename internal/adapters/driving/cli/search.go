package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

var (
	searchTopK      int
	searchThreshold float64
	searchKB        string
	searchRerank    int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed document chunks",
	Long: `Performs semantic search over the vector index. Results below the
similarity threshold are dropped. Use --rerank to widen the candidate
pool before filtering when metadata filters discard too many hits.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity (0 uses the default)")
	searchCmd.Flags().StringVar(&searchKB, "kb", "", "restrict to one knowledge base")
	searchCmd.Flags().IntVar(&searchRerank, "rerank", 0, "candidate pool size for reranking")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := context.Background()
	opts := domain.RetrievalOptions{
		TopK:           searchTopK,
		ScoreThreshold: searchThreshold,
	}
	if searchKB != "" {
		opts.Filters = map[string]string{"knowledge_base_id": searchKB}
	}

	var results []domain.RetrievalResult
	var err error
	if searchRerank > 0 {
		results, err = retrievalService.RetrieveWithRerank(ctx, query, searchRerank, opts)
	} else {
		results, err = retrievalService.Retrieve(ctx, query, opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchList(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchList(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		snippet := r.Content
		if len(snippet) > 160 {
			snippet = snippet[:160] + "..."
		}
		snippet = strings.ReplaceAll(snippet, "\n", " ")

		cmd.Printf("  [%d] %.3f  %s\n", i+1, r.Similarity, r.DocumentID)
		cmd.Printf("      %s\n", snippet)
		cmd.Println()
	}
	return nil
}
