package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/graphrag/ai/mock"
	"github.com/poiesic/graphrag/core"
	badgerstore "github.com/poiesic/graphrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestReindexer(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, texts ...string) (*mock.MockEmbedder, *Reindexer, func() []*core.Chunk) {
		t.Helper()

		graphRepo, chunkRepo, backend, err := badgerstore.NewMemoryRepositories()
		require.NoError(t, err)
		t.Cleanup(func() {
			graphRepo.Close()
			chunkRepo.Close()
			backend.Close()
		})

		for _, text := range texts {
			_, err := chunkRepo.UpsertChunks(ctx, &core.Chunk{Text: text, Vector: []float32{9, 9}})
			require.NoError(t, err)
		}

		embedder := mock.NewMockEmbedder()
		reindexer, err := NewReindexer(chunkRepo, embedder, fastConfig(), &bytes.Buffer{})
		require.NoError(t, err)

		collect := func() []*core.Chunk {
			var all []*core.Chunk
			err := chunkRepo.IterateChunks(ctx, 100, func(batch []*core.Chunk) error {
				all = append(all, batch...)
				return nil
			})
			require.NoError(t, err)
			return all
		}
		return embedder, reindexer, collect
	}

	t.Run("rewrites all vectors normalized", func(t *testing.T) {
		embedder, reindexer, collect := setup(t, "one", "two", "three")

		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{3, 4}
			}
			return vectors, nil
		}

		require.NoError(t, reindexer.Run(ctx))

		chunks := collect()
		require.Len(t, chunks, 3)
		for _, chunk := range chunks {
			require.Len(t, chunk.Vector, 2)
			assert.InDelta(t, 0.6, chunk.Vector[0], 1e-6)
			assert.InDelta(t, 0.8, chunk.Vector[1], 1e-6)
		}
	})

	t.Run("empty database is a no-op", func(t *testing.T) {
		_, reindexer, _ := setup(t)
		require.NoError(t, reindexer.Run(ctx))
	})

	t.Run("retries transient embedding failures", func(t *testing.T) {
		embedder, reindexer, _ := setup(t, "one")

		calls := 0
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient")
			}
			return [][]float32{{1, 0}}, nil
		}

		require.NoError(t, reindexer.Run(ctx))
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent failure surfaces", func(t *testing.T) {
		embedder, reindexer, _ := setup(t, "one")

		boom := errors.New("boom")
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, boom
		}

		err := reindexer.Run(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("requires dependencies", func(t *testing.T) {
		_, err := NewReindexer(nil, mock.NewMockEmbedder(), nil, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error after exhausting attempts", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return boom
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("rejects non-positive attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := RetryWithBackoff(canceled, func() error { return errors.New("x") }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNormalizeVector(t *testing.T) {
	assert.Equal(t, []float32{0.6, 0.8}, NormalizeVector([]float32{3, 4}))
	assert.Equal(t, []float32{0, 0}, NormalizeVector([]float32{0, 0}))
	assert.Empty(t, NormalizeVector(nil))
}
