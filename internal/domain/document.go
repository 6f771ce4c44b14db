// Package domain holds the value types shared across the ingestion and
// query pipelines: documents, chunks, conversation state, retrieval
// results, and the pipeline error taxonomy.
package domain

import "fmt"

// Document is a unit of source text handed to the chunker. Produced by a
// corpus loader; never mutated after construction.
type Document struct {
	SourceID string // Stable source identifier, e.g. a file path
	Title    string // First top-level heading, "" for untitled sources
	Text     string // Normalized plain text content
}

// Chunk is a contiguous substring of a Document. Consecutive chunks from
// the same source overlap by the configured overlap, except possibly the
// final chunk which may be shorter.
type Chunk struct {
	SourceID string
	Text     string
	Offset   int // Byte offset of Text within the source document
	Length   int // len(Text), always <= the configured chunk size
}

// Key returns the stable identity for the chunk's indexed vector.
// Re-ingesting the same document with the same chunking parameters yields
// the same keys, so upserts overwrite instead of duplicating.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s#%d", c.SourceID, c.Offset)
}
