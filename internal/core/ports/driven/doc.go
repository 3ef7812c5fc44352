// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - VectorIndex: Vector storage/search with file-pair persistence
//   - EmbeddingService: Generates vector embeddings
//   - DocumentStore: Document and chunk persistence
//   - Extractor: Extracts text from one file format
//   - ExtractorRegistry: Selects the extractor for a MIME type
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - WebSearcher: Live external search. Without it the web_search source
//     contributes nothing.
//   - MessageStore: Conversation history. Without it the conversation
//     source contributes nothing.
//   - Reranker: Result re-ranking. Without it results are score-sorted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
