package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/ai/mock"
	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/graph"
	"github.com/poiesic/graphrag/storage"
	badgerstore "github.com/poiesic/graphrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	pipeline *Pipeline
	store    *graph.Store
	chunks   storage.ChunkRepository
	provider *mock.MockProvider
}

func newPipelineFixture(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()

	graphRepo, chunkRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		graphRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})

	store := graph.NewStore(graphRepo)
	require.NoError(t, store.Load(context.Background()))

	provider := mock.NewMockProvider().(*mock.MockProvider)

	pipeline, err := NewPipeline(store, chunkRepo, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		pipeline: pipeline,
		store:    store,
		chunks:   chunkRepo,
		provider: provider,
	}
}

func TestIngestDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("stores chunks and grows the graph", func(t *testing.T) {
		f := newPipelineFixture(t)

		f.provider.GetMockExtractor().ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
			return &ai.Extraction{
				Entities: []string{"Alice", "Acme"},
				Relations: []ai.ExtractedRelation{
					{Source: "Alice", Target: "Acme", Relation: "works_at"},
				},
			}, nil
		}

		result, err := f.pipeline.IngestDocument(ctx, "doc.txt", "Alice works at Acme.")
		require.NoError(t, err)

		assert.Equal(t, 1, result.Chunks)
		assert.Equal(t, 2, result.Entities)
		assert.Equal(t, 1, result.Relations)

		snap := f.store.Snapshot()
		assert.Equal(t, 2, snap.NodeCount())
		assert.Equal(t, 1, snap.EdgeCount())

		count, err := f.chunks.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		chunk, err := f.chunks.GetChunk(ctx, core.IDFromContent("Alice works at Acme."))
		require.NoError(t, err)
		assert.Equal(t, "doc.txt", chunk.Source)
		assert.NotEmpty(t, chunk.Vector)
	})

	t.Run("one extraction call per document", func(t *testing.T) {
		f := newPipelineFixture(t, WithChunkSize(20))

		paragraphs := make([]string, 6)
		for i := range paragraphs {
			paragraphs[i] = "paragraph number " + strings.Repeat("x", i+1)
		}
		text := strings.Join(paragraphs, "\n\n")

		result, err := f.pipeline.IngestDocument(ctx, "multi.txt", text)
		require.NoError(t, err)
		assert.Greater(t, result.Chunks, 1)
		assert.Equal(t, 1, f.provider.GetMockExtractor().CallCount())
	})

	t.Run("re-ingestion is idempotent", func(t *testing.T) {
		f := newPipelineFixture(t)

		f.provider.GetMockExtractor().ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
			return &ai.Extraction{
				Entities: []string{"Alice"},
				Relations: []ai.ExtractedRelation{
					{Source: "Alice", Target: "Acme", Relation: "works_at"},
				},
			}, nil
		}

		_, err := f.pipeline.IngestDocument(ctx, "doc.txt", "Alice works at Acme.")
		require.NoError(t, err)
		_, err = f.pipeline.IngestDocument(ctx, "doc.txt", "Alice works at Acme.")
		require.NoError(t, err)

		count, err := f.chunks.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		snap := f.store.Snapshot()
		assert.Equal(t, 2, snap.NodeCount())
		assert.Equal(t, 1, snap.EdgeCount())
	})

	t.Run("empty document rejected", func(t *testing.T) {
		f := newPipelineFixture(t)

		_, err := f.pipeline.IngestDocument(ctx, "empty.txt", "   \n\n ")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("extraction error aborts before any write", func(t *testing.T) {
		f := newPipelineFixture(t)

		f.provider.GetMockExtractor().ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
			return nil, ai.ErrMalformedExtraction
		}

		_, err := f.pipeline.IngestDocument(ctx, "doc.txt", "some text")
		assert.ErrorIs(t, err, ai.ErrMalformedExtraction)

		count, err := f.chunks.CountChunks(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, f.store.Snapshot().NodeCount())
	})

	t.Run("embedding error aborts chunk writes", func(t *testing.T) {
		f := newPipelineFixture(t)

		boom := errors.New("boom")
		f.provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, boom
		}

		_, err := f.pipeline.IngestDocument(ctx, "doc.txt", "Some Text here")
		assert.ErrorIs(t, err, boom)

		count, err := f.chunks.CountChunks(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestNewPipelineValidation(t *testing.T) {
	graphRepo, chunkRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		graphRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})
	store := graph.NewStore(graphRepo)

	_, err = NewPipeline(nil, chunkRepo, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewPipeline(store, nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(store, chunkRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
