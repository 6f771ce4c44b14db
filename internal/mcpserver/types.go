// Package mcpserver exposes the corpus and the query pipeline as MCP
// tools: grounded question answering with named sessions, raw semantic
// search, and index status.
package mcpserver

import "time"

// AskInput defines the input parameters for the ask_corpus tool.
type AskInput struct {
	// Question is the user's utterance; follow-ups may reference prior
	// turns of the same session.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the indexed corpus"`
	// Session names the conversation to continue. Each session keeps its
	// own history.
	Session string `json:"session,omitempty" jsonschema:"description=Session name for multi-turn conversations (default: default)"`
}

// AskOutput contains the grounded answer for one turn.
type AskOutput struct {
	// Answer is the grounded response, or the fixed no-answer fallback.
	Answer string `json:"answer"`
	// Query is the standalone form of the question after rewriting.
	Query string `json:"query"`
	// Sources lists the evidence passages used for the answer.
	Sources []SourceHit `json:"sources"`
	// Turns is the session's history length after this exchange.
	Turns int `json:"turns"`
}

// SearchInput defines the input parameters for the search_corpus tool.
type SearchInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=50,default=5,description=Maximum number of chunks to return"`
}

// SearchOutput contains raw retrieval hits.
type SearchOutput struct {
	Results []SourceHit `json:"results"`
	// Message provides informational context (e.g. nothing matched).
	Message string `json:"message,omitempty"`
}

// SourceHit is one retrieved chunk with its similarity score.
type SourceHit struct {
	Text     string  `json:"text"`
	SourceID string  `json:"source_id"`
	Score    float64 `json:"score"`
}

// StatusInput defines the input for the index_status tool. No parameters.
type StatusInput struct{}

// StatusOutput reports index statistics.
type StatusOutput struct {
	// IndexedVectors is the number of chunks in the vector store.
	IndexedVectors uint64 `json:"indexed_vectors"`
	// CheckedAt is when the count was taken.
	CheckedAt time.Time `json:"checked_at"`
}
