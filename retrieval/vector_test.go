package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/graphrag/ai/mock"
	"github.com/poiesic/graphrag/core"
	badgerstore "github.com/poiesic/graphrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorClient(t *testing.T) {
	ctx := context.Background()

	newClient := func(t *testing.T, embedder *mock.MockEmbedder, chunks ...*core.Chunk) *VectorClient {
		t.Helper()
		graphRepo, chunkRepo, backend, err := badgerstore.NewMemoryRepositories()
		require.NoError(t, err)
		t.Cleanup(func() {
			graphRepo.Close()
			chunkRepo.Close()
			backend.Close()
		})

		if len(chunks) > 0 {
			_, err = chunkRepo.UpsertChunks(ctx, chunks...)
			require.NoError(t, err)
		}

		client, err := NewVectorClient(chunkRepo, embedder)
		require.NoError(t, err)
		return client
	}

	t.Run("returns texts ranked by similarity", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}
		client := newClient(t, embedder,
			&core.Chunk{Text: "best", Vector: []float32{1, 0}},
			&core.Chunk{Text: "worse", Vector: []float32{0.5, 0.5}},
		)

		texts, err := client.Search(ctx, "query", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"best", "worse"}, texts)
	})

	t.Run("respects k", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}
		client := newClient(t, embedder,
			&core.Chunk{Text: "best", Vector: []float32{1, 0}},
			&core.Chunk{Text: "worse", Vector: []float32{0.5, 0.5}},
		)

		texts, err := client.Search(ctx, "query", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"best"}, texts)
	})

	t.Run("propagates embedder errors", func(t *testing.T) {
		boom := errors.New("boom")
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, boom
		}
		client := newClient(t, embedder)

		_, err := client.Search(ctx, "query", 5)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("requires dependencies", func(t *testing.T) {
		_, err := NewVectorClient(nil, mock.NewMockEmbedder())
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})
}
