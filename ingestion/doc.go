// Package ingestion turns raw documents into retrievable state: knowledge
// graph nodes and edges on one side, embedded text chunks on the other.
//
// A document is chunked on paragraph boundaries, analyzed once for entities
// and relations (one extraction call per document, however many chunks it
// yields), and its chunks are embedded concurrently through a bounded
// worker pool before being persisted.
package ingestion
