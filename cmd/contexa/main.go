// Command contexa is the context composition engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	configfile "github.com/custodia-labs/contexa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/contexa/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/contexa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/contexa/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/contexa/internal/adapters/driven/watch"
	"github.com/custodia-labs/contexa/internal/adapters/driven/websearch/searx"
	"github.com/custodia-labs/contexa/internal/adapters/driving/cli"
	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/services"
	"github.com/custodia-labs/contexa/internal/extractors"
	"github.com/custodia-labs/contexa/internal/extractors/docx"
	"github.com/custodia-labs/contexa/internal/extractors/pdf"
	"github.com/custodia-labs/contexa/internal/extractors/plaintext"
	"github.com/custodia-labs/contexa/internal/extractors/pptx"
	"github.com/custodia-labs/contexa/internal/extractors/xlsx"
	"github.com/custodia-labs/contexa/internal/logger"
	"github.com/custodia-labs/contexa/internal/postprocessors/chunker"
)

// snapshotName is the vector index checkpoint written after batches.
const snapshotName = "index"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dataDir := cfg.GetString("storage.data_dir")
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	embeddings := ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    cfg.GetString("embedding.base_url"),
		Model:      cfg.GetString("embedding.model"),
		Dimensions: cfg.GetInt("embedding.dimensions"),
	})
	defer embeddings.Close()

	indexDir := cfg.GetString("index.dir")
	if indexDir == "" {
		indexDir = filepath.Join(filepath.Dir(store.Path()), "index")
	}
	vectorIndex, err := flat.New(embeddings.Dimensions(), indexDir)
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}
	if err := vectorIndex.Load(snapshotName); err != nil {
		return fmt.Errorf("loading vector index: %w", err)
	}
	logger.Debug("Vector index loaded: %d entries", vectorIndex.Len())

	// Web search is optional; without a configured instance the source
	// simply never contributes.
	var webSearch driven.WebSearcher
	if baseURL := cfg.GetString("websearch.base_url"); baseURL != "" {
		webSearch, err = searx.NewSearcher(searx.Config{
			BaseURL:           baseURL,
			RequestsPerSecond: cfg.GetFloat("websearch.requests_per_second"),
		})
		if err != nil {
			return fmt.Errorf("configuring web search: %w", err)
		}
	}

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New(nil))
	registry.Register(docx.New())
	registry.Register(xlsx.New())
	registry.Register(pptx.New())

	chunks := chunker.New()
	docStore := store.DocumentStore()

	ingestor := services.NewIngestor(registry, chunks, docStore, vectorIndex, embeddings, services.IngestConfig{
		KnowledgeBaseID:     cfg.GetString("ingest.knowledge_base"),
		MaxFileSize:         int64(cfg.GetInt("ingest.max_file_size")),
		SimilarityThreshold: cfg.GetFloat("ingest.similarity_threshold"),
	})

	batch := services.NewBatch(ingestor, vectorIndex, services.BatchConfig{
		Workers:      cfg.GetInt("ingest.workers"),
		BatchSize:    cfg.GetInt("ingest.batch_size"),
		FileTimeout:  time.Duration(cfg.GetInt("ingest.file_timeout_seconds")) * time.Second,
		SnapshotName: snapshotName,
	})

	analyzer := services.NewAnalyzer(cfg.GetInt("query.keywords"))
	retriever := services.NewRetriever(vectorIndex, embeddings, docStore, nil)
	history := services.NewHistory(store.MessageStore(), analyzer)
	if window := cfg.GetInt("history.window"); window > 0 {
		if err := history.SetWindow(window); err != nil {
			return fmt.Errorf("configuring history window: %w", err)
		}
	}

	router := services.NewRouter(analyzer, retriever, history, webSearch, services.RouterConfig{
		SourceTimeout: time.Duration(cfg.GetInt("router.source_timeout_seconds")) * time.Second,
		WebResults:    cfg.GetInt("router.web_results"),
		Retrieval: domain.RetrievalOptions{
			TopK:           cfg.GetInt("retrieval.top_k"),
			ScoreThreshold: cfg.GetFloat("retrieval.threshold"),
		},
	})

	cli.SetServices(cli.Services{
		Router:    router,
		Retrieval: retriever,
		Batch:     batch,
		Watcher: func(root string) (interface {
			Run(ctx context.Context) error
		}, error) {
			return watch.New(root, ingestor, docStore, vectorIndex)
		},
	})

	if err := cli.Execute(); err != nil {
		return err
	}

	// Persist anything single-file ingestion added outside a batch.
	if err := vectorIndex.Save(snapshotName); err != nil {
		logger.Warn("Saving vector index: %v", err)
	}
	return nil
}
