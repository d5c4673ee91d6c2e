package storage

import (
	"context"

	"github.com/poiesic/graphrag/core"
)

// GraphRepository persists the knowledge graph as a whole snapshot.
// Implementations must write snapshots atomically: a concurrent LoadGraph
// must return either the previous or the new snapshot, never a mix.
type GraphRepository interface {
	// LoadGraph returns the most recently committed graph snapshot.
	// Returns ErrGraphNotFound if no snapshot has ever been saved, and
	// ErrGraphCorrupt if the stored bytes cannot be decoded. It never
	// substitutes an empty graph for a missing or damaged one.
	LoadGraph(ctx context.Context) (*core.KnowledgeGraph, error)

	// SaveGraph persists a full snapshot, replacing the previous one.
	SaveGraph(ctx context.Context, graph *core.KnowledgeGraph) error

	// InitGraph persists an empty snapshot if none exists yet.
	// A no-op when a snapshot is already present.
	InitGraph(ctx context.Context) error

	// Close closes the repository and releases resources.
	Close() error
}

// ChunkRepository stores text chunks with their embedding vectors and serves
// top-k similarity queries over them. Implementations must be safe for
// concurrent use.
type ChunkRepository interface {
	// UpsertChunks stores one or more chunks. Chunks with Id=0 get a
	// content-derived ID, so re-upserting identical text is idempotent.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	UpsertChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// FindSimilar returns chunks whose vectors score >= minSimilarity
	// against the query vector, up to limit results, ordered by
	// similarity descending.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)

	// IterateChunks calls fn with successive batches of up to batchSize
	// chunks until all chunks are visited or fn returns an error.
	IterateChunks(ctx context.Context, batchSize int, fn func(chunks []*core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
