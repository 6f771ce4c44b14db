package chat

import (
	"context"
	"fmt"

	"github.com/docchat/docchat/internal/domain"
)

// Retriever embeds a standalone query and fetches the topK most relevant
// chunks from the vector store. Results keep the store's order; the store
// owns the distance metric and ranking.
type Retriever struct {
	embedder QueryEmbedder
	store    SearchStore
	topK     int
}

// NewRetriever validates topK and builds a Retriever.
func NewRetriever(embedder QueryEmbedder, store SearchStore, topK int) (*Retriever, error) {
	if topK < 1 {
		return nil, &domain.ConfigError{Param: "topK", Reason: fmt.Sprintf("must be positive, got %d", topK)}
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}, nil
}

// Retrieve returns up to topK scored chunks for the query. A sparse index
// returning fewer hits, or none at all, is a valid outcome.
func (r *Retriever) Retrieve(ctx context.Context, query string) (domain.RetrievalResult, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &domain.ServiceError{Stage: "embed", Err: err}
	}

	hits, err := r.store.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, &domain.ServiceError{Stage: "retrieve", Err: err}
	}

	return hits, nil
}
