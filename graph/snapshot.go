// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph provides read-optimized views over the knowledge graph and
// the concurrency-safe store that publishes them. A Snapshot is immutable
// once built; all search operations run against a snapshot, so queries are
// never blocked by writers and never observe partial mutations.
package graph

import (
	"sort"

	"github.com/poiesic/graphrag/core"
)

// Snapshot is an immutable view of the knowledge graph with adjacency
// indices for traversal. Do not mutate the underlying graph after building
// a snapshot from it; Store enforces this by cloning before every write.
type Snapshot struct {
	graph *core.KnowledgeGraph

	// edge indices into graph.Edges, keyed by endpoint name
	out map[string][]int
	in  map[string][]int
}

// NewSnapshot builds adjacency indices over the given graph. The graph must
// not be modified afterwards.
func NewSnapshot(g *core.KnowledgeGraph) *Snapshot {
	s := &Snapshot{
		graph: g,
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}
	for i, e := range g.Edges {
		s.out[e.Source] = append(s.out[e.Source], i)
		s.in[e.Target] = append(s.in[e.Target], i)
	}
	return s
}

// NewEmptySnapshot returns a snapshot over an empty graph.
func NewEmptySnapshot() *Snapshot {
	return NewSnapshot(core.NewKnowledgeGraph())
}

// NodeCount returns the number of nodes.
func (s *Snapshot) NodeCount() int {
	return len(s.graph.Nodes)
}

// EdgeCount returns the number of edges.
func (s *Snapshot) EdgeCount() int {
	return len(s.graph.Edges)
}

// Node returns the node with the given canonical name.
func (s *Snapshot) Node(name string) (core.Node, bool) {
	node, ok := s.graph.Nodes[name]
	return node, ok
}

// Entities returns all node names in lexicographic order.
func (s *Snapshot) Entities() []string {
	names := make([]string, 0, len(s.graph.Nodes))
	for name := range s.graph.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relations returns all edges in insertion order.
func (s *Snapshot) Relations() []core.Edge {
	edges := make([]core.Edge, len(s.graph.Edges))
	copy(edges, s.graph.Edges)
	return edges
}
