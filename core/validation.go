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


package core

import (
	"fmt"
	"strings"
)

// ValidateNode validates a Node according to domain rules.
//
// Validation rules:
//   - Name must not be empty or whitespace-only
//
// NOT validated:
//   - Type (empty defaults to NodeTypeEntity on upsert)
//   - Attrs (optional)
func ValidateNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrInvalidNode)
	}

	if strings.TrimSpace(node.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNode, ErrEmptyName)
	}

	return nil
}

// ValidateEdge validates an Edge according to domain rules.
//
// Validation rules:
//   - Source and Target must not be empty
//   - Relation label must not be empty
//
// Endpoint existence is not checked here; UpsertEdge guarantees it by
// upserting both endpoints before the edge.
func ValidateEdge(edge *Edge) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrInvalidEdge)
	}

	if strings.TrimSpace(edge.Source) == "" || strings.TrimSpace(edge.Target) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEdge, ErrEmptyEndpoint)
	}

	if strings.TrimSpace(edge.Relation) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEdge, ErrEmptyRelation)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding step runs)
//   - ID (0 means "derive from content" on upsert)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	return nil
}
