// Package reindex rebuilds the embedding vectors of all stored chunks.
//
// Embeddings are only comparable within one model, so after changing the
// embedding model every chunk must be re-embedded before similarity search
// gives sane results. The Reindexer streams chunks in batches, embeds them
// with retry and exponential backoff, normalizes the vectors, and writes
// them back in place.
package reindex
