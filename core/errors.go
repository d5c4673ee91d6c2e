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

import "errors"

// Domain validation errors
var (
	// ErrInvalidNode indicates a Node failed validation.
	ErrInvalidNode = errors.New("invalid node")

	// ErrInvalidEdge indicates an Edge failed validation.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyName indicates a node name is empty.
	ErrEmptyName = errors.New("node name cannot be empty")

	// ErrEmptyEndpoint indicates an edge source or target is empty.
	ErrEmptyEndpoint = errors.New("edge endpoints cannot be empty")

	// ErrEmptyRelation indicates an edge relation label is empty.
	ErrEmptyRelation = errors.New("relation label cannot be empty")

	// ErrEmptyText indicates a chunk Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrUnknownCategory indicates a QueryCategory value outside the closed set.
	ErrUnknownCategory = errors.New("unknown query category")

	// ErrMalformedRecord indicates serialized bytes that cannot be decoded.
	ErrMalformedRecord = errors.New("malformed record bytes")
)
