package badger

import (
	"fmt"

	"github.com/poiesic/graphrag/core"
)

// Key prefixes for different data types
const (
	graphSnapshotKey  = "graphsnap"
	chunkPrefix       = "chkrec"
	chunkSourcePrefix = "chkrecsrc"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:source:id
func makeChunkSourceKey(source string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", chunkSourcePrefix, source, id))
}
