package retrieval

import (
	"context"
	"log/slog"

	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/storage"
)

// VectorClient performs semantic search over stored chunks: it embeds the
// query text and ranks chunks by cosine similarity.
type VectorClient struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewVectorClient creates a vector search client.
func NewVectorClient(chunks storage.ChunkRepository, embedder ai.Embedder) (*VectorClient, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &VectorClient{
		chunks:   chunks,
		embedder: embedder,
		logger:   slog.Default().With("component", "vector_client"),
	}, nil
}

// Search returns the texts of the k chunks most similar to the query text,
// ranked by similarity descending. No similarity threshold is applied.
func (v *VectorClient) Search(ctx context.Context, text string, k int) ([]string, error) {
	vector, err := v.embedder.EmbedText(ctx, text)
	if err != nil {
		v.logger.Error("error generating embedding for search", "err", err)
		return nil, err
	}

	matches, err := v.chunks.FindSimilar(ctx, vector, 0, k)
	if err != nil {
		v.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		texts = append(texts, match.Chunk.Text)
	}
	return texts, nil
}
