// Package cli provides the cobra command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// WatcherFactory builds a directory watcher. The watcher mirrors into
// the ingest service's knowledge base. The CLI owns no adapter wiring;
// main injects this.
type WatcherFactory func(root string) (interface {
	Run(ctx context.Context) error
}, error)

// Services injected by main before Execute.
var (
	routerService    driving.RouterService
	retrievalService driving.RetrievalService
	batchService     driving.BatchService
	newWatcher       WatcherFactory
)

// Services bundles everything the commands need.
type Services struct {
	Router    driving.RouterService
	Retrieval driving.RetrievalService
	Batch     driving.BatchService
	Watcher   WatcherFactory
}

// SetServices injects service implementations into the commands.
// Nil entries leave the corresponding commands unconfigured; they
// report a configuration error instead of panicking.
func SetServices(s Services) {
	routerService = s.Router
	retrievalService = s.Retrieval
	batchService = s.Batch
	newWatcher = s.Watcher
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "contexa",
	Short: "Context composition for retrieval-augmented chat",
	Long: `Contexa ingests documents into a local knowledge base and composes
bounded, source-weighted context for retrieval-augmented queries.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
