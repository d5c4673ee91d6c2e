// Package retrieval implements the hybrid retrieval pass over the knowledge
// graph and the chunk store.
//
// The Orchestrator type ties the stages together:
//   - Query classification by embedding similarity
//   - Entity extraction from the query text
//   - Graph search: exact match with one-hop relations and bounded
//     multi-hop traversal, falling back to per-token keyword search
//   - Vector search: one primary search for the query plus a small bounded
//     concurrent search for every entity the graph stage surfaced
//
// Summarization queries skip the graph stages entirely and run a single
// wider vector search. Merged contexts are deduplicated by exact text and
// kept in a deterministic order.
package retrieval
