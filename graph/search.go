package graph

import (
	"sort"
	"strings"

	"github.com/poiesic/graphrag/core"
)

// SearchEntity resolves a query token to a node by exact name match after
// trimming surrounding whitespace. Matching is case-sensitive; the canonical
// node name is returned on success.
func (s *Snapshot) SearchEntity(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	if node, ok := s.graph.Nodes[trimmed]; ok {
		return node.Name, true
	}
	return "", false
}

// OneHopRelations returns every edge touching the entity, outbound edges
// first, then inbound, each group in insertion order. An entity with no
// edges yields an empty slice.
func (s *Snapshot) OneHopRelations(entity string) []core.Edge {
	outIdx := s.out[entity]
	inIdx := s.in[entity]

	edges := make([]core.Edge, 0, len(outIdx)+len(inIdx))
	for _, i := range outIdx {
		edges = append(edges, s.graph.Edges[i])
	}
	for _, i := range inIdx {
		edges = append(edges, s.graph.Edges[i])
	}
	return edges
}

// MultiHopTraversal returns the names of all nodes reachable from the entity
// within depth hops, treating edges as undirected. The start entity is never
// included, even when a cycle leads back to it. Results are sorted for
// deterministic output. Depth <= 0 yields an empty slice.
func (s *Snapshot) MultiHopTraversal(entity string, depth int) []string {
	if depth <= 0 {
		return []string{}
	}
	if _, ok := s.graph.Nodes[entity]; !ok {
		return []string{}
	}

	visited := map[string]bool{entity: true}
	frontier := []string{entity}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, name := range frontier {
			for _, i := range s.out[name] {
				target := s.graph.Edges[i].Target
				if !visited[target] {
					visited[target] = true
					next = append(next, target)
				}
			}
			for _, i := range s.in[name] {
				source := s.graph.Edges[i].Source
				if !visited[source] {
					visited[source] = true
					next = append(next, source)
				}
			}
		}
		frontier = next
	}

	delete(visited, entity)
	reached := make([]string, 0, len(visited))
	for name := range visited {
		reached = append(reached, name)
	}
	sort.Strings(reached)
	return reached
}

// KeywordSearch finds nodes and edges containing the keyword as a
// case-insensitive substring. Node names and attribute values are searched
// for node hits; relation labels are searched for edge hits. Node results
// are deduplicated and sorted; edge results keep insertion order.
func (s *Snapshot) KeywordSearch(keyword string) ([]string, []core.Edge) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return []string{}, []core.Edge{}
	}

	var nodes []string
	for _, name := range s.Entities() {
		node := s.graph.Nodes[name]
		if strings.Contains(strings.ToLower(node.Name), needle) {
			nodes = append(nodes, node.Name)
			continue
		}
		for _, v := range node.Attrs {
			if strings.Contains(strings.ToLower(v), needle) {
				nodes = append(nodes, node.Name)
				break
			}
		}
	}

	var edges []core.Edge
	for _, e := range s.graph.Edges {
		if strings.Contains(strings.ToLower(e.Relation), needle) {
			edges = append(edges, e)
		}
	}

	if nodes == nil {
		nodes = []string{}
	}
	if edges == nil {
		edges = []core.Edge{}
	}
	return nodes, edges
}

// Query resolves a single query token against the graph. An exact entity
// match produces a GraphMatch with one-hop relations and a bounded
// multi-hop traversal; otherwise the token falls back to keyword search,
// producing a KeywordMatch only when something matched. Both results nil
// means the token found nothing.
func (s *Snapshot) Query(token string, depth int) (*core.GraphMatch, *core.KeywordMatch) {
	if entity, ok := s.SearchEntity(token); ok {
		return &core.GraphMatch{
			Entity:   entity,
			OneHop:   s.OneHopRelations(entity),
			MultiHop: s.MultiHopTraversal(entity, depth),
		}, nil
	}

	nodes, edges := s.KeywordSearch(token)
	if len(nodes) == 0 && len(edges) == 0 {
		return nil, nil
	}
	return nil, &core.KeywordMatch{
		Keyword: strings.TrimSpace(token),
		Nodes:   nodes,
		Edges:   edges,
	}
}
