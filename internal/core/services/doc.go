// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The query-time path is Analyzer -> Retriever -> Router -> History;
// the ingestion path is Ingestor -> Batch. The two paths share only
// the vector index and document store.
package services
