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


// Package storage defines persistence interfaces for the knowledge graph
// snapshot and the chunk/vector index, plus MUS serialization helpers shared
// by backends.
//
// Two repositories cover the two kinds of state:
//
//   - GraphRepository: the knowledge graph, persisted as one snapshot blob
//     and replaced atomically on every commit.
//   - ChunkRepository: text chunks with embedding vectors, stored as
//     individual records and queried by cosine similarity.
//
// The storage/badger sub-package provides the BadgerDB implementation used
// in production and an in-memory variant for tests.
package storage
