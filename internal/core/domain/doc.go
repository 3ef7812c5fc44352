// Package domain defines the core business entities for Contexa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A logical unit of knowledge with change-detection hash
//   - Chunk: A retrievable unit within a document
//   - Message: A single conversation turn
//   - QueryAnalysis: The classified form of a user query
//   - RoutingWeights: Per-persona source weighting
//   - IngestionTask: Transient batch progress record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
