package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunks.
// It is generated from chunk content using content-based hashing, so
// re-ingesting identical text is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NodeTypeEntity is the node type assigned to all graph nodes today.
// The field exists so future node kinds (documents, media) can coexist.
const NodeTypeEntity = "entity"

// Node is a named vertex in the knowledge graph. The canonical name is the
// unique key; matching against it is case-sensitive.
type Node struct {
	Name  string
	Type  string
	Attrs map[string]string // optional string attributes, searched by keyword queries
}

// Edge is a labeled directed relation between two nodes. The graph has
// multigraph semantics: the same (Source, Target) pair may carry several
// edges with different Relation labels.
type Edge struct {
	Source   string
	Relation string
	Target   string
}

// KnowledgeGraph is the full node/edge collection. It is a plain value:
// concurrency control lives in graph.Store, which hands out immutable
// snapshots built from committed graph values.
type KnowledgeGraph struct {
	Nodes map[string]Node
	Edges []Edge
}

// NewKnowledgeGraph creates an empty knowledge graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Nodes: make(map[string]Node),
	}
}

// UpsertNode adds a node or updates its attributes. Re-adding an existing
// name keeps the single existing node (attributes are merged, last write
// wins per key).
func (g *KnowledgeGraph) UpsertNode(name, nodeType string, attrs map[string]string) {
	if nodeType == "" {
		nodeType = NodeTypeEntity
	}

	existing, ok := g.Nodes[name]
	if !ok {
		node := Node{Name: name, Type: nodeType}
		if len(attrs) > 0 {
			node.Attrs = make(map[string]string, len(attrs))
			for k, v := range attrs {
				node.Attrs[k] = v
			}
		}
		g.Nodes[name] = node
		return
	}

	existing.Type = nodeType
	if len(attrs) > 0 {
		if existing.Attrs == nil {
			existing.Attrs = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			existing.Attrs[k] = v
		}
	}
	g.Nodes[name] = existing
}

// UpsertEdge adds a directed labeled edge. Both endpoints are upserted as
// nodes first, so an edge can never reference a missing node. Re-adding an
// identical (source, target, relation) triple is a no-op.
func (g *KnowledgeGraph) UpsertEdge(source, target, relation string) {
	g.UpsertNode(source, NodeTypeEntity, nil)
	g.UpsertNode(target, NodeTypeEntity, nil)

	for _, e := range g.Edges {
		if e.Source == source && e.Target == target && e.Relation == relation {
			return
		}
	}
	g.Edges = append(g.Edges, Edge{Source: source, Relation: relation, Target: target})
}

// Clone returns a deep copy of the graph. Writers clone the committed value,
// mutate the copy, and publish it, so readers never observe a partial write.
func (g *KnowledgeGraph) Clone() *KnowledgeGraph {
	clone := &KnowledgeGraph{
		Nodes: make(map[string]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for name, node := range g.Nodes {
		copied := node
		if node.Attrs != nil {
			copied.Attrs = make(map[string]string, len(node.Attrs))
			for k, v := range node.Attrs {
				copied.Attrs[k] = v
			}
		}
		clone.Nodes[name] = copied
	}
	copy(clone.Edges, g.Edges)
	return clone
}

// GraphMatch is the graph evidence produced for a query entity that matched
// a node exactly: its one-hop relations and the set of entities reachable
// within the traversal depth.
type GraphMatch struct {
	Entity   string
	OneHop   []Edge
	MultiHop []string
}

// KeywordMatch is the graph evidence produced by substring keyword search.
// Nodes are deduplicated; duplicate edges are a valid graph state and are
// kept as returned.
type KeywordMatch struct {
	Keyword string
	Nodes   []string
	Edges   []Edge
}

// Chunk is a unit of retrievable text with its embedding vector.
// The vector is populated by the ingestion pipeline or the reindexer.
type Chunk struct {
	Id         ID
	Text       string
	Source     string // originating document identifier
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ChunkMatch is a chunk returned from vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}

// RetrievalResult is the merged output of one retrieval pass, handed to the
// answer-generation layer. Contexts is deduplicated by exact text equality
// and kept in insertion order for determinism; similarity scores are not
// carried through the merge.
type RetrievalResult struct {
	Category QueryCategory
	Score    float32 // classifier confidence for Category
	Matches  []GraphMatch
	Keywords []KeywordMatch
	Contexts []string
}
