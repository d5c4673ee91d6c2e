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

package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/graph"
	"github.com/poiesic/graphrag/storage"
)

// defaultChunkSize is the character budget per chunk.
const defaultChunkSize = 1000

// embedBatchSize is the number of chunks embedded per worker task.
const embedBatchSize = 16

// Pipeline ingests documents: it splits text into chunks, extracts entities
// and relations into the knowledge graph, embeds the chunks concurrently,
// and persists them to the chunk repository.
type Pipeline struct {
	graphs        *graph.Store
	chunks        storage.ChunkRepository
	embedder      ai.Embedder
	extractor     ai.EntityExtractor
	embeddingPool *ants.Pool
	chunkSize     int
	logger        *slog.Logger
}

// IngestResult summarizes one document ingestion.
type IngestResult struct {
	Chunks    int           // chunks stored
	Entities  int           // entities extracted into the graph
	Relations int           // relations extracted into the graph
	Elapsed   time.Duration // wall-clock ingestion time
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithChunkSize sets the character budget per chunk.
// Default is 1000.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	graphs *graph.Store,
	chunks storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if graphs == nil {
		return nil, ErrGraphStoreRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graphs:        graphs,
		chunks:        chunks,
		embedder:      provider.Embedder(),
		extractor:     provider.EntityExtractor(),
		embeddingPool: pool,
		chunkSize:     defaultChunkSize,
		logger:        slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return p, nil
}

// Release frees the worker pool. The pipeline must not be used after.
func (p *Pipeline) Release() {
	p.embeddingPool.Release()
}

// IngestDocument ingests one document identified by source. The whole
// document is analyzed in a single extraction call; the graph grows by the
// entities and relations found. Chunks are embedded concurrently and stored
// with content-derived IDs, so re-ingesting the same document is idempotent.
func (p *Pipeline) IngestDocument(ctx context.Context, source, text string) (*IngestResult, error) {
	start := time.Now()

	pieces := SplitText(text, p.chunkSize)
	if len(pieces) == 0 {
		return nil, ErrEmptyDocument
	}

	extraction, err := p.extractor.ExtractEntities(ctx, text)
	if err != nil {
		return nil, err
	}

	if !extraction.Empty() {
		err = p.graphs.Mutate(ctx, func(g *core.KnowledgeGraph) error {
			for _, entity := range extraction.Entities {
				g.UpsertNode(entity, core.NodeTypeEntity, nil)
			}
			for _, rel := range extraction.Relations {
				g.UpsertEdge(rel.Source, rel.Target, rel.Relation)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	vectors, err := p.embedAll(ctx, pieces)
	if err != nil {
		return nil, err
	}

	records := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		records[i] = &core.Chunk{
			Text:   piece,
			Source: source,
			Vector: vectors[i],
		}
	}
	if _, err := p.chunks.UpsertChunks(ctx, records...); err != nil {
		return nil, err
	}

	result := &IngestResult{
		Chunks:    len(records),
		Entities:  len(extraction.Entities),
		Relations: len(extraction.Relations),
		Elapsed:   time.Since(start),
	}
	p.logger.Info("document ingested",
		"source", source,
		"chunks", result.Chunks,
		"entities", result.Entities,
		"relations", result.Relations,
		"elapsed", result.Elapsed)
	return result, nil
}

// embedAll embeds the pieces in fixed-size batches across the worker pool,
// preserving input order in the returned vectors.
func (p *Pipeline) embedAll(ctx context.Context, pieces []string) ([][]float32, error) {
	vectors := make([][]float32, len(pieces))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for offset := 0; offset < len(pieces); offset += embedBatchSize {
		end := offset + embedBatchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		offset, end := offset, end

		wg.Add(1)
		submitErr := p.embeddingPool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			batch, err := p.embedder.EmbedTexts(ctx, pieces[offset:end])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			copy(vectors[offset:end], batch)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
