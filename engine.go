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

// Package graphrag is a hybrid retrieval engine that combines a knowledge
// graph with vector similarity search over text chunks. Documents are
// ingested into both structures; queries are classified and routed to the
// retrieval strategy that fits them, and retrieved evidence can be handed
// to an LLM for grounded answer generation.
package graphrag

import (
	"context"
	"log/slog"
	"os"

	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/ai/openai"
	"github.com/poiesic/graphrag/classify"
	"github.com/poiesic/graphrag/graph"
	"github.com/poiesic/graphrag/ingestion"
	"github.com/poiesic/graphrag/reindex"
	"github.com/poiesic/graphrag/retrieval"
	"github.com/poiesic/graphrag/storage"
	"github.com/poiesic/graphrag/storage/badger"
)

// Engine is the top-level handle on a retrieval database: the storage
// backend, the published knowledge graph, and the AI services, wired
// together and ready to build pipelines and orchestrators.
type Engine struct {
	backend    *badger.Backend
	graphRepo  storage.GraphRepository
	chunkRepo  storage.ChunkRepository
	graphs     *graph.Store
	provider   ai.AIProvider
	classifier *classify.Classifier
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// AI provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing
// the default OpenAI-compatible one. The engine takes ownership and closes
// it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, without touching disk.
// The file path argument is ignored. Intended for tests and experiments.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// NewEngine opens (or creates) the retrieval database at filePath and loads
// the knowledge graph. A database that has never held a graph gets an empty
// one, so a fresh directory is immediately usable.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	graphRepo := badger.NewGraphRepository(backend)
	chunkRepo := badger.NewChunkRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	graphs := graph.NewStore(graphRepo)
	if err := graphs.Load(context.Background()); err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:    backend,
		graphRepo:  graphRepo,
		chunkRepo:  chunkRepo,
		graphs:     graphs,
		provider:   provider,
		classifier: classify.NewClassifier(provider.Embedder()),
		logger:     slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := e.graphRepo.Close(); err != nil {
		e.logger.Error("error closing graph repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// GraphStore returns the published knowledge graph store.
func (e *Engine) GraphStore() *graph.Store {
	return e.graphs
}

// ChunkRepository returns the chunk repository.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// Provider returns the AI provider.
func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

// NewIngestionPipeline builds an ingestion pipeline over this engine's
// storage and AI services.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.graphs, e.chunkRepo, e.provider, opts...)
}

// NewOrchestrator builds a retrieval orchestrator over this engine's
// storage and AI services.
func (e *Engine) NewOrchestrator(opts ...retrieval.Option) (*retrieval.Orchestrator, error) {
	vectors, err := retrieval.NewVectorClient(e.chunkRepo, e.provider.Embedder())
	if err != nil {
		return nil, err
	}
	return retrieval.NewOrchestrator(e.graphs, vectors, e.classifier, e.provider.EntityExtractor(), opts...)
}

// NewReindexer builds a reindexer that re-embeds every stored chunk.
// Progress is written to stderr.
func (e *Engine) NewReindexer(config *reindex.Config) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(e.chunkRepo, e.provider.Embedder(), config, os.Stderr)
}
