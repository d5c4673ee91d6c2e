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


package storage

import (
	"errors"
	"fmt"
)

// ErrGraphUnavailable indicates the graph snapshot cannot be served. Both
// concrete causes below wrap it, so callers can treat "cannot use the graph"
// uniformly while still distinguishing a fresh store from a damaged one.
var ErrGraphUnavailable = errors.New("graph snapshot unavailable")

var (
	// ErrGraphNotFound indicates no snapshot has been persisted yet.
	ErrGraphNotFound = fmt.Errorf("%w: snapshot not found", ErrGraphUnavailable)

	// ErrGraphCorrupt indicates the persisted snapshot cannot be decoded.
	ErrGraphCorrupt = fmt.Errorf("%w: snapshot corrupt", ErrGraphUnavailable)
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
