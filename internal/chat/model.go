package chat

import (
	"context"

	"github.com/docchat/docchat/internal/domain"
)

// ChatModel is the stateless completion boundary shared by the query
// rewriter and the answer generator. The caller supplies the full
// conversation context on every call.
type ChatModel interface {
	Generate(ctx context.Context, turns []domain.Turn, system string) (string, error)
}

// QueryEmbedder embeds a single query string. It must use the identical
// model configuration used at ingestion time.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchStore answers nearest-neighbor queries over the indexed corpus.
type SearchStore interface {
	Query(ctx context.Context, vector []float32, topK int) (domain.RetrievalResult, error)
}
