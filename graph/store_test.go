package graph

import (
	"context"
	"errors"
	"testing"

	badgerstore "github.com/poiesic/graphrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/graphrag/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	graphRepo, chunkRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		graphRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})
	return NewStore(graphRepo)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("load initializes missing graph to empty", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Load(ctx))
		assert.Zero(t, store.Snapshot().NodeCount())
	})

	t.Run("mutate persists and publishes", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Load(ctx))

		err := store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			g.UpsertEdge("Alice", "Acme", "works_at")
			return nil
		})
		require.NoError(t, err)

		snap := store.Snapshot()
		assert.Equal(t, 2, snap.NodeCount())
		assert.Equal(t, 1, snap.EdgeCount())

		_, ok := snap.SearchEntity("Alice")
		assert.True(t, ok)
	})

	t.Run("failed mutation leaves published view unchanged", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Load(ctx))

		require.NoError(t, store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			g.UpsertNode("Alice", core.NodeTypeEntity, nil)
			return nil
		}))

		boom := errors.New("boom")
		err := store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			g.UpsertNode("Eve", core.NodeTypeEntity, nil)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		snap := store.Snapshot()
		assert.Equal(t, 1, snap.NodeCount())
		_, ok := snap.SearchEntity("Eve")
		assert.False(t, ok)
	})

	t.Run("old snapshot stays valid after mutation", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Load(ctx))

		require.NoError(t, store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			g.UpsertNode("Alice", core.NodeTypeEntity, nil)
			return nil
		}))
		before := store.Snapshot()

		require.NoError(t, store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			g.UpsertNode("Bob", core.NodeTypeEntity, nil)
			return nil
		}))

		assert.Equal(t, 1, before.NodeCount())
		assert.Equal(t, 2, store.Snapshot().NodeCount())
	})

	t.Run("mutations survive a reload", func(t *testing.T) {
		graphRepo, chunkRepo, backend, err := badgerstore.NewMemoryRepositories()
		require.NoError(t, err)
		t.Cleanup(func() {
			graphRepo.Close()
			chunkRepo.Close()
			backend.Close()
		})

		store := NewStore(graphRepo)
		require.NoError(t, store.Load(ctx))
		require.NoError(t, store.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			g.UpsertEdge("Alice", "Bob", "knows")
			return nil
		}))

		reloaded := NewStore(graphRepo)
		require.NoError(t, reloaded.Load(ctx))
		assert.Equal(t, 1, reloaded.Snapshot().EdgeCount())
	})
}
