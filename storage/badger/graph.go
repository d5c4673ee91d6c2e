package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/storage"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
// The whole graph lives under a single key, so every save is one atomic
// key write: a concurrent load sees either the old or the new snapshot.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) *GraphRepository {
	return &GraphRepository{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (r *GraphRepository) Close() error {
	return nil
}

// LoadGraph returns the most recently committed graph snapshot.
func (r *GraphRepository) LoadGraph(ctx context.Context) (*core.KnowledgeGraph, error) {
	var graph *core.KnowledgeGraph
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(graphSnapshotKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrGraphNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			graph, err = storage.UnmarshalKnowledgeGraph(val)
			if err != nil {
				return fmt.Errorf("%w: %w", storage.ErrGraphCorrupt, err)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return graph, nil
}

// SaveGraph persists a full snapshot, replacing the previous one.
func (r *GraphRepository) SaveGraph(ctx context.Context, graph *core.KnowledgeGraph) error {
	value := storage.MarshalKnowledgeGraph(graph)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(graphSnapshotKey), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// InitGraph persists an empty snapshot if none exists yet.
func (r *GraphRepository) InitGraph(ctx context.Context) error {
	_, err := r.LoadGraph(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrGraphNotFound) {
		return err
	}
	return r.SaveGraph(ctx, core.NewKnowledgeGraph())
}
