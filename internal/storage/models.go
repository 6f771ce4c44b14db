package storage

// IndexedVector is the row persisted per chunk: a stable id, the chunk's
// embedding, and enough payload to reconstruct evidence at query time.
type IndexedVector struct {
	ID        string    // Stable key, "sourceId#offset"
	Embedding []float32 // Dimension-length vector
	Text      string    // Chunk text
	SourceID  string    // Originating document identifier
	Title     string    // Originating document title, may be empty
}

// CollectionName is the single qdrant collection holding all chunks.
const CollectionName = "chunks"

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536
