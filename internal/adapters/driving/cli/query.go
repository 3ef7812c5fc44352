package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
)

var (
	queryConversation  string
	queryKnowledgeBase string
	queryHistoryTokens int
	queryNoWeb         bool
	queryNoHistory     bool
	queryJSON          bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Compose retrieval context for a query",
	Long: `Classifies the query, weights the configured sources and composes
a bounded context from the knowledge base, web search and conversation
history. The composed context is printed to stdout for use as an LLM
prompt prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryConversation, "conversation", "c", "", "conversation ID for history context")
	queryCmd.Flags().StringVar(&queryKnowledgeBase, "kb", "", "restrict retrieval to one knowledge base")
	queryCmd.Flags().IntVar(&queryHistoryTokens, "history-tokens", 0, "token budget for conversation history")
	queryCmd.Flags().BoolVar(&queryNoWeb, "no-web", false, "disable the web search source")
	queryCmd.Flags().BoolVar(&queryNoHistory, "no-history", false, "disable the conversation source")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if routerService == nil {
		return errors.New("router service not configured")
	}

	weights := domain.DefaultRoutingWeights()
	if queryNoWeb {
		weights.WebSearch.Enabled = false
	}
	if queryNoHistory {
		weights.Conversation.Enabled = false
	}

	ctx := context.Background()
	result, err := routerService.Compose(ctx, driving.ComposeRequest{
		Query:            args[0],
		ConversationID:   queryConversation,
		Weights:          weights,
		KnowledgeBaseID:  queryKnowledgeBase,
		MaxHistoryTokens: queryHistoryTokens,
	})
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if result.Context == "" {
		cmd.Println("No source contributed context; the role prompt stands alone.")
		return nil
	}

	cmd.Println(result.Context)
	if len(result.SourcesUsed) > 0 {
		cmd.Printf("\n(sources: %v, query type: %s)\n", result.SourcesUsed, result.Analysis.Type)
	}
	return nil
}
