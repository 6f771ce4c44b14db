package domain

// ScoredChunk is one retrieval hit: chunk text plus the store's similarity
// score. The store owns the distance metric; scores are comparable only
// within one result set.
type ScoredChunk struct {
	Text     string
	SourceID string
	Score    float64
}

// RetrievalResult is an ordered sequence of hits, descending by score as
// returned by the vector store. May hold fewer than topK entries when the
// index is sparse; empty is a valid state, not an error.
type RetrievalResult []ScoredChunk
