package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/ai/mock"
	"github.com/poiesic/graphrag/classify"
	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/graph"
	badgerstore "github.com/poiesic/graphrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClassifier returns a classifier that always assigns the given
// category with score 1.
func fixedClassifier(target core.QueryCategory) *classify.Classifier {
	categories := core.Categories()
	axis := func(category core.QueryCategory) []float32 {
		vec := make([]float32, len(categories))
		for i, c := range categories {
			if c == category {
				vec[i] = 1
			}
		}
		return vec
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return axis(target), nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range categories {
			vectors[i] = axis(categories[i])
		}
		return vectors, nil
	}
	return classify.NewClassifier(embedder)
}

// harness wires an orchestrator over in-memory storage with controllable
// embeddings: vecs maps query/entity text to its search vector.
type harness struct {
	orchestrator *Orchestrator
	store        *graph.Store
	extractor    *mock.MockEntityExtractor
	embedder     *mock.MockEmbedder
}

func newHarness(t *testing.T, category core.QueryCategory, vecs map[string][]float32, chunks []*core.Chunk) *harness {
	t.Helper()
	ctx := context.Background()

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

	store := graph.NewStore(graphRepo)
	require.NoError(t, store.Load(ctx))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if vec, ok := vecs[text]; ok {
			return vec, nil
		}
		return []float32{0, 0, 0}, nil
	}

	vectors, err := NewVectorClient(chunkRepo, embedder)
	require.NoError(t, err)

	extractor := mock.NewMockEntityExtractor()

	orchestrator, err := NewOrchestrator(store, vectors, fixedClassifier(category), extractor, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(orchestrator.Release)

	return &harness{
		orchestrator: orchestrator,
		store:        store,
		extractor:    extractor,
		embedder:     embedder,
	}
}

func seedAliceGraph(t *testing.T, store *graph.Store) {
	t.Helper()
	err := store.Mutate(context.Background(), func(g *core.KnowledgeGraph) error {
		g.UpsertEdge("Alice", "Acme", "works_at")
		g.UpsertEdge("Acme", "Berlin", "located_in")
		return nil
	})
	require.NoError(t, err)
}

func TestRetrieveSummarization(t *testing.T) {
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Text: "doc one", Vector: []float32{1, 0, 0}},
		{Text: "doc two", Vector: []float32{0.5, 0.5, 0}},
	}
	h := newHarness(t, core.CategorySummarization, map[string][]float32{
		"summarize everything": {1, 0, 0},
	}, chunks)
	seedAliceGraph(t, h.store)

	result, err := h.orchestrator.Retrieve(ctx, "summarize everything")
	require.NoError(t, err)

	assert.Equal(t, core.CategorySummarization, result.Category)
	assert.Equal(t, []string{"doc one", "doc two"}, result.Contexts)

	// Summarization never touches the graph path.
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.Keywords)
	assert.Zero(t, h.extractor.CallCount())
}

func TestRetrieveHybridGraphMatch(t *testing.T) {
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Text: "about the query", Vector: []float32{1, 0, 0}},
		{Text: "about alice", Vector: []float32{0, 1, 0}},
	}
	h := newHarness(t, core.CategoryFactualLookup, map[string][]float32{
		"where does Alice work": {1, 0, 0},
		"Alice":                 {0, 1, 0},
	}, chunks)
	seedAliceGraph(t, h.store)

	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return &ai.Extraction{Entities: []string{"Alice"}}, nil
	}

	result, err := h.orchestrator.Retrieve(ctx, "where does Alice work")
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, "Alice", match.Entity)
	require.Len(t, match.OneHop, 1)
	assert.Equal(t, "works_at", match.OneHop[0].Relation)
	assert.Equal(t, []string{"Acme", "Berlin"}, match.MultiHop)

	// No keyword fallback when an exact match exists.
	assert.Empty(t, result.Keywords)

	// Primary hits first, then expansion hits, deduplicated.
	assert.Contains(t, result.Contexts, "about the query")
	assert.Contains(t, result.Contexts, "about alice")
	assert.Equal(t, "about the query", result.Contexts[0])
}

func TestRetrieveKeywordFallback(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, core.CategoryKeywordSearch, map[string][]float32{}, nil)
	seedAliceGraph(t, h.store)

	// Extractor finds nothing resolvable against the graph.
	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return &ai.Extraction{Entities: []string{"Zeus"}}, nil
	}

	result, err := h.orchestrator.Retrieve(ctx, "mentions of works_at please")
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	require.Len(t, result.Keywords, 1)
	kw := result.Keywords[0]
	assert.Equal(t, "works_at", kw.Keyword)
	require.Len(t, kw.Edges, 1)
	assert.Equal(t, "Alice", kw.Edges[0].Source)
}

func TestRetrieveMergeDeduplicates(t *testing.T) {
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Text: "A", Vector: []float32{1, 0, 0}},
		{Text: "B", Vector: []float32{0, 1, 0}},
		{Text: "C", Vector: []float32{-1, 0.2, 0}},
	}
	h := newHarness(t, core.CategoryFactualLookup, map[string][]float32{
		"the query": {1, 0, 0},
		"Alice":     {-1, 0, 0},
		"Acme":      {-1, 0, 0},
	}, chunks)

	err := h.store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
		g.UpsertEdge("Alice", "Acme", "works_at")
		return nil
	})
	require.NoError(t, err)

	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return &ai.Extraction{Entities: []string{"Alice"}}, nil
	}

	result, err := h.orchestrator.Retrieve(ctx, "the query")
	require.NoError(t, err)

	// Primary sees A then B; each expansion sees C then B. B appears once.
	assert.Equal(t, []string{"A", "B", "C"}, result.Contexts)
}

func TestRetrievePrimarySearchError(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, core.CategoryFactualLookup, nil, nil)

	boom := errors.New("boom")
	h.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}
	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return &ai.Extraction{}, nil
	}

	_, err := h.orchestrator.Retrieve(ctx, "anything")
	assert.ErrorIs(t, err, ErrPrimarySearch)
	assert.ErrorIs(t, err, boom)
}

func TestRetrieveEntityExpansionFailureTolerated(t *testing.T) {
	ctx := context.Background()

	chunks := []*core.Chunk{
		{Text: "primary hit", Vector: []float32{1, 0, 0}},
	}
	h := newHarness(t, core.CategoryFactualLookup, nil, chunks)

	err := h.store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
		g.UpsertEdge("Alice", "Acme", "works_at")
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	h.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "Alice" {
			return nil, boom
		}
		return []float32{1, 0, 0}, nil
	}
	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return &ai.Extraction{Entities: []string{"Alice"}}, nil
	}

	result, err := h.orchestrator.Retrieve(ctx, "the query")
	require.NoError(t, err)
	assert.Equal(t, []string{"primary hit"}, result.Contexts)
}

func TestRetrieveCancellation(t *testing.T) {
	h := newHarness(t, core.CategoryFactualLookup, map[string][]float32{
		"the query": {1, 0, 0},
	}, nil)

	err := h.store.Mutate(context.Background(), func(g *core.KnowledgeGraph) error {
		g.UpsertNode("Alice", core.NodeTypeEntity, nil)
		return nil
	})
	require.NoError(t, err)

	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return &ai.Extraction{Entities: []string{"Alice"}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.orchestrator.Retrieve(ctx, "the query")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrieveExtractorError(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, core.CategoryFactualLookup, nil, nil)

	h.extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) (*ai.Extraction, error) {
		return nil, ai.ErrMalformedExtraction
	}

	_, err := h.orchestrator.Retrieve(ctx, "anything")
	assert.ErrorIs(t, err, ai.ErrMalformedExtraction)
	assert.NotErrorIs(t, err, ErrPrimarySearch)
}

func TestNewOrchestratorValidation(t *testing.T) {
	h := newHarness(t, core.CategoryFactualLookup, nil, nil)

	vectors := h.orchestrator.vectors
	classifier := h.orchestrator.classifier

	_, err := NewOrchestrator(nil, vectors, classifier, h.extractor)
	assert.ErrorIs(t, err, ErrGraphStoreRequired)

	_, err = NewOrchestrator(h.store, nil, classifier, h.extractor)
	assert.ErrorIs(t, err, ErrVectorClientRequired)

	_, err = NewOrchestrator(h.store, vectors, nil, h.extractor)
	assert.ErrorIs(t, err, ErrClassifierRequired)

	_, err = NewOrchestrator(h.store, vectors, classifier, nil)
	assert.ErrorIs(t, err, ErrExtractorRequired)
}
