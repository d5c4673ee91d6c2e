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

// Package classify assigns incoming queries to a retrieval category by
// embedding similarity against fixed category descriptions.
package classify

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/poiesic/graphrag/ai"
	"github.com/poiesic/graphrag/core"
)

// Classifier scores a query against every category description and returns
// the best match. Category description embeddings are computed once on
// first use and cached for the classifier's lifetime.
type Classifier struct {
	embedder ai.Embedder
	logger   *slog.Logger

	mu      sync.Mutex
	vectors [][]float32 // indexed in core.Categories() order, nil until first Classify
}

// NewClassifier creates a classifier using the given embedder.
func NewClassifier(embedder ai.Embedder) *Classifier {
	return &Classifier{
		embedder: embedder,
		logger:   slog.Default().With("component", "classifier"),
	}
}

// Classify returns the category whose description is most similar to the
// query, along with the similarity score. Every query gets a category; there
// is no confidence threshold. Ties resolve to the first category in
// core.Categories() order.
func (c *Classifier) Classify(ctx context.Context, query string) (core.QueryCategory, float32, error) {
	vectors, err := c.categoryVectors(ctx)
	if err != nil {
		return 0, 0, err
	}

	queryVec, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return 0, 0, err
	}

	categories := core.Categories()
	best := categories[0]
	bestScore := float32(math.Inf(-1))
	for i, category := range categories {
		score := cosineSimilarity(queryVec, vectors[i])
		if score > bestScore {
			bestScore = score
			best = category
		}
	}

	c.logger.Debug("classified query",
		"category", best.String(),
		"score", bestScore)
	return best, bestScore, nil
}

// categoryVectors embeds the category descriptions, computing them at most
// once. The batch is ordered by core.Categories().
func (c *Classifier) categoryVectors(ctx context.Context) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vectors != nil {
		return c.vectors, nil
	}

	categories := core.Categories()
	texts := make([]string, len(categories))
	for i, category := range categories {
		texts[i] = categoryDescriptions[category]
	}

	vectors, err := c.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	c.vectors = vectors
	return vectors, nil
}

func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	if minLen == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
