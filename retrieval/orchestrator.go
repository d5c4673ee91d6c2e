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

package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/classify"
	"github.com/poiesic/graphrag/core"
	"github.com/poiesic/graphrag/graph"
)

const (
	// defaultPrimaryK is the result count for the primary query vector search.
	defaultPrimaryK = 5

	// defaultEntityK is the result count for each related-entity expansion search.
	defaultEntityK = 2

	// defaultSummaryK is the result count for summarization queries, which
	// skip the graph entirely and want broader text coverage.
	defaultSummaryK = 8

	// defaultTraversalDepth bounds the multi-hop traversal from matched entities.
	defaultTraversalDepth = 2
)

// Orchestrator runs the full hybrid retrieval pass: classification, graph
// search, and vector search, merged into a single RetrievalResult.
type Orchestrator struct {
	graphs     *graph.Store
	vectors    *VectorClient
	classifier *classify.Classifier
	extractor  ai.EntityExtractor
	pool       *ants.Pool
	logger     *slog.Logger

	primaryK       int
	entityK        int
	summaryK       int
	traversalDepth int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for related-entity vector searches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithTraversalDepth sets the multi-hop traversal depth for graph matches.
// Default is 2.
func WithTraversalDepth(depth int) Option {
	return func(o *Orchestrator) error {
		if depth < 0 {
			depth = 0
		}
		o.traversalDepth = depth
		return nil
	}
}

// NewOrchestrator creates a retrieval orchestrator.
func NewOrchestrator(
	graphs *graph.Store,
	vectors *VectorClient,
	classifier *classify.Classifier,
	extractor ai.EntityExtractor,
	opts ...Option,
) (*Orchestrator, error) {
	if graphs == nil {
		return nil, ErrGraphStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorClientRequired
	}
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		graphs:         graphs,
		vectors:        vectors,
		classifier:     classifier,
		extractor:      extractor,
		pool:           pool,
		logger:         slog.Default().With("component", "orchestrator"),
		primaryK:       defaultPrimaryK,
		entityK:        defaultEntityK,
		summaryK:       defaultSummaryK,
		traversalDepth: defaultTraversalDepth,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return o, nil
}

// Release frees the worker pool. The orchestrator must not be used after.
func (o *Orchestrator) Release() {
	o.pool.Release()
}

// Retrieve classifies the query and runs the matching retrieval strategy.
// Summarization queries use vector search only; every other category runs
// the hybrid graph-plus-vector path.
func (o *Orchestrator) Retrieve(ctx context.Context, query string) (*core.RetrievalResult, error) {
	category, score, err := o.classifier.Classify(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateCategory(category); err != nil {
		return nil, err
	}

	o.logger.Debug("query classified", "category", category.String(), "score", score)

	result := &core.RetrievalResult{
		Category: category,
		Score:    score,
	}

	if category == core.CategorySummarization {
		contexts, err := o.vectors.Search(ctx, query, o.summaryK)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPrimarySearch, err)
		}
		result.Contexts = contexts
		return result, nil
	}

	return o.hybridRetrieve(ctx, query, result)
}

// hybridRetrieve runs entity extraction, graph search with keyword fallback,
// and the fanned-out vector searches, merging everything into result.
func (o *Orchestrator) hybridRetrieve(ctx context.Context, query string, result *core.RetrievalResult) (*core.RetrievalResult, error) {
	extraction, err := o.extractor.ExtractEntities(ctx, query)
	if err != nil {
		return nil, err
	}

	snap := o.graphs.Snapshot()
	related := make(map[string]bool)

	for _, name := range extraction.Entities {
		entity, ok := snap.SearchEntity(name)
		if !ok {
			continue
		}
		match := core.GraphMatch{
			Entity:   entity,
			OneHop:   snap.OneHopRelations(entity),
			MultiHop: snap.MultiHopTraversal(entity, o.traversalDepth),
		}
		result.Matches = append(result.Matches, match)

		// Both endpoints of every one-hop edge count as related, which
		// includes the matched entity itself.
		for _, edge := range match.OneHop {
			related[edge.Source] = true
			related[edge.Target] = true
		}
		for _, reached := range match.MultiHop {
			related[reached] = true
		}
	}

	// Keyword fallback only when no entity matched the graph exactly.
	if len(result.Matches) == 0 {
		for _, token := range strings.Fields(query) {
			nodes, edges := snap.KeywordSearch(token)
			if len(nodes) == 0 && len(edges) == 0 {
				continue
			}
			result.Keywords = append(result.Keywords, core.KeywordMatch{
				Keyword: token,
				Nodes:   nodes,
				Edges:   edges,
			})
			for _, name := range nodes {
				related[name] = true
			}
			for _, edge := range edges {
				related[edge.Source] = true
				related[edge.Target] = true
			}
		}
	}

	contexts, err := o.searchContexts(ctx, query, related)
	if err != nil {
		return nil, err
	}
	result.Contexts = contexts
	return result, nil
}

// searchContexts runs the primary vector search plus one bounded concurrent
// search per related entity, then merges with exact-text deduplication.
// The primary hits always come first; entity expansions follow in sorted
// entity order so the merge is deterministic.
func (o *Orchestrator) searchContexts(ctx context.Context, query string, related map[string]bool) ([]string, error) {
	primary, err := o.vectors.Search(ctx, query, o.primaryK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrimarySearch, err)
	}

	entities := make([]string, 0, len(related))
	for name := range related {
		entities = append(entities, name)
	}
	sort.Strings(entities)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		byEntity = make(map[string][]string, len(entities))
	)

	for _, entity := range entities {
		entity := entity
		wg.Add(1)
		submitErr := o.pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			hits, err := o.vectors.Search(ctx, entity, o.entityK)
			if err != nil {
				// Expansion searches are best effort; the primary hits
				// still produce a usable result.
				o.logger.Warn("entity expansion search failed", "entity", entity, "err", err)
				return
			}

			mu.Lock()
			byEntity[entity] = hits
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			o.logger.Warn("failed to submit expansion search", "entity", entity, "err", submitErr)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	merged := make([]string, 0, len(primary))
	appendUnique := func(texts []string) {
		for _, text := range texts {
			if seen[text] {
				continue
			}
			seen[text] = true
			merged = append(merged, text)
		}
	}

	appendUnique(primary)
	for _, entity := range entities {
		appendUnique(byEntity[entity])
	}
	return merged, nil
}
