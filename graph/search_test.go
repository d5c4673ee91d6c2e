package graph

import (
	"testing"

	"github.com/poiesic/graphrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Builds the fixture used across the search tests:
//
//	Alice -works_at-> Acme
//	Alice -knows-> Bob
//	Bob -manages-> Carol
//	Carol -reports_to-> Acme
//	Dave (isolated)
func buildFixture() *Snapshot {
	g := core.NewKnowledgeGraph()
	g.UpsertNode("Alice", core.NodeTypeEntity, map[string]string{"role": "engineer"})
	g.UpsertEdge("Alice", "Acme", "works_at")
	g.UpsertEdge("Alice", "Bob", "knows")
	g.UpsertEdge("Bob", "Carol", "manages")
	g.UpsertEdge("Carol", "Acme", "reports_to")
	g.UpsertNode("Dave", core.NodeTypeEntity, nil)
	return NewSnapshot(g)
}

func TestSearchEntity(t *testing.T) {
	snap := buildFixture()

	t.Run("exact match", func(t *testing.T) {
		name, ok := snap.SearchEntity("Alice")
		require.True(t, ok)
		assert.Equal(t, "Alice", name)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		name, ok := snap.SearchEntity("  Alice \t")
		require.True(t, ok)
		assert.Equal(t, "Alice", name)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, ok := snap.SearchEntity("alice")
		assert.False(t, ok)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, ok := snap.SearchEntity("Eve")
		assert.False(t, ok)
	})

	t.Run("blank token", func(t *testing.T) {
		_, ok := snap.SearchEntity("   ")
		assert.False(t, ok)
	})
}

func TestOneHopRelations(t *testing.T) {
	snap := buildFixture()

	t.Run("outbound before inbound", func(t *testing.T) {
		edges := snap.OneHopRelations("Bob")
		require.Len(t, edges, 2)
		assert.Equal(t, core.Edge{Source: "Bob", Relation: "manages", Target: "Carol"}, edges[0])
		assert.Equal(t, core.Edge{Source: "Alice", Relation: "knows", Target: "Bob"}, edges[1])
	})

	t.Run("isolated node has no relations", func(t *testing.T) {
		assert.Empty(t, snap.OneHopRelations("Dave"))
	})

	t.Run("hub sees every touching edge", func(t *testing.T) {
		edges := snap.OneHopRelations("Acme")
		assert.Len(t, edges, 2)
	})
}

func TestMultiHopTraversal(t *testing.T) {
	snap := buildFixture()

	t.Run("depth one is the direct neighborhood", func(t *testing.T) {
		reached := snap.MultiHopTraversal("Alice", 1)
		assert.Equal(t, []string{"Acme", "Bob"}, reached)
	})

	t.Run("depth two reaches further", func(t *testing.T) {
		reached := snap.MultiHopTraversal("Alice", 2)
		assert.Equal(t, []string{"Acme", "Bob", "Carol"}, reached)
	})

	t.Run("monotone in depth", func(t *testing.T) {
		prev := map[string]bool{}
		for depth := 1; depth <= 4; depth++ {
			reached := snap.MultiHopTraversal("Alice", depth)
			for name := range prev {
				assert.Contains(t, reached, name)
			}
			prev = map[string]bool{}
			for _, name := range reached {
				prev[name] = true
			}
		}
	})

	t.Run("depth zero yields nothing", func(t *testing.T) {
		assert.Empty(t, snap.MultiHopTraversal("Alice", 0))
	})

	t.Run("traversal is undirected", func(t *testing.T) {
		// Acme has only inbound edges, but still reaches its neighbors.
		reached := snap.MultiHopTraversal("Acme", 1)
		assert.Equal(t, []string{"Alice", "Carol"}, reached)
	})

	t.Run("start excluded even through cycles", func(t *testing.T) {
		g := core.NewKnowledgeGraph()
		g.UpsertEdge("A", "B", "r1")
		g.UpsertEdge("B", "C", "r2")
		g.UpsertEdge("C", "A", "r3")
		cyc := NewSnapshot(g)

		reached := cyc.MultiHopTraversal("A", 5)
		assert.Equal(t, []string{"B", "C"}, reached)
	})

	t.Run("unknown start yields nothing", func(t *testing.T) {
		assert.Empty(t, snap.MultiHopTraversal("Eve", 3))
	})
}

func TestKeywordSearch(t *testing.T) {
	snap := buildFixture()

	t.Run("case insensitive substring on names", func(t *testing.T) {
		nodes, _ := snap.KeywordSearch("ali")
		assert.Equal(t, []string{"Alice"}, nodes)

		nodes, _ = snap.KeywordSearch("ALICE")
		assert.Equal(t, []string{"Alice"}, nodes)
	})

	t.Run("matches attribute values", func(t *testing.T) {
		nodes, _ := snap.KeywordSearch("engineer")
		assert.Equal(t, []string{"Alice"}, nodes)
	})

	t.Run("matches relation labels", func(t *testing.T) {
		nodes, edges := snap.KeywordSearch("works")
		assert.Empty(t, nodes)
		require.Len(t, edges, 1)
		assert.Equal(t, "works_at", edges[0].Relation)
	})

	t.Run("node matched once even when name and attrs both hit", func(t *testing.T) {
		g := core.NewKnowledgeGraph()
		g.UpsertNode("rust", core.NodeTypeEntity, map[string]string{"topic": "rust"})
		s := NewSnapshot(g)

		nodes, _ := s.KeywordSearch("rust")
		assert.Equal(t, []string{"rust"}, nodes)
	})

	t.Run("no matches", func(t *testing.T) {
		nodes, edges := snap.KeywordSearch("zzz")
		assert.Empty(t, nodes)
		assert.Empty(t, edges)
	})

	t.Run("blank keyword matches nothing", func(t *testing.T) {
		nodes, edges := snap.KeywordSearch("   ")
		assert.Empty(t, nodes)
		assert.Empty(t, edges)
	})
}

func TestQuery(t *testing.T) {
	snap := buildFixture()

	t.Run("exact entity produces graph match", func(t *testing.T) {
		match, kw := snap.Query("Alice", 2)
		require.NotNil(t, match)
		assert.Nil(t, kw)
		assert.Equal(t, "Alice", match.Entity)
		assert.Len(t, match.OneHop, 2)
		assert.Equal(t, []string{"Acme", "Bob", "Carol"}, match.MultiHop)
	})

	t.Run("non-entity token falls back to keywords", func(t *testing.T) {
		match, kw := snap.Query("manages", 2)
		assert.Nil(t, match)
		require.NotNil(t, kw)
		assert.Equal(t, "manages", kw.Keyword)
		require.Len(t, kw.Edges, 1)
	})

	t.Run("token with no hits at all", func(t *testing.T) {
		match, kw := snap.Query("zzz", 2)
		assert.Nil(t, match)
		assert.Nil(t, kw)
	})
}
