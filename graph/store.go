package graph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/storage"
)

// Store owns the committed knowledge graph and publishes immutable
// snapshots of it. Readers call Snapshot and get a consistent view that is
// never invalidated; writers serialize through Mutate, which persists the
// new graph before publishing it, so a crash can never leave the published
// view ahead of storage.
type Store struct {
	repo   storage.GraphRepository
	logger *slog.Logger

	mu      sync.Mutex // serializes writers
	current *core.KnowledgeGraph
	snap    atomic.Pointer[Snapshot]
}

// NewStore creates a Store over the given repository. Call Load before use.
func NewStore(repo storage.GraphRepository) *Store {
	s := &Store{
		repo:   repo,
		logger: slog.Default().With("component", "graph_store"),
	}
	s.current = core.NewKnowledgeGraph()
	s.snap.Store(NewSnapshot(s.current))
	return s
}

// Load reads the persisted graph and publishes it. A missing graph is
// initialized to empty; a corrupt one is reported, not repaired.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.repo.LoadGraph(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrGraphNotFound) {
			s.logger.Info("no persisted graph, starting empty")
			graph = core.NewKnowledgeGraph()
			if err := s.repo.SaveGraph(ctx, graph); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	s.current = graph
	s.snap.Store(NewSnapshot(graph))
	s.logger.Info("graph loaded",
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges))
	return nil
}

// Snapshot returns the most recently published view. Safe for concurrent
// use; the returned snapshot stays valid after later mutations.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Mutate applies fn to a private copy of the committed graph, persists the
// result, and publishes a new snapshot. If fn or persistence fails, the
// published view is unchanged. fn must not retain the graph after returning.
func (s *Store) Mutate(ctx context.Context, fn func(g *core.KnowledgeGraph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := s.repo.SaveGraph(ctx, next); err != nil {
		return err
	}

	s.current = next
	s.snap.Store(NewSnapshot(next))
	return nil
}
