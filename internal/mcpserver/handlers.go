package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/domain"
)

// Counter reports index statistics. The storage backends implement it.
type Counter interface {
	Count(ctx context.Context) (uint64, error)
}

// makeAskHandler creates the ask_corpus tool handler. Each call runs one
// query-pipeline turn against the named session; a failed turn surfaces as
// a tool error and leaves the session history untouched, so the question
// can simply be re-asked.
func makeAskHandler(pipeline *chat.Pipeline, sessions *SessionStore) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		var out AskOutput

		err := sessions.WithHistory(input.Session, func(h *domain.History) error {
			resp, err := pipeline.Ask(ctx, h, input.Question)
			if err != nil {
				return err
			}
			out = AskOutput{
				Answer:  resp.Answer,
				Query:   resp.Query,
				Sources: toSourceHits(resp.Sources),
				Turns:   h.Len(),
			}
			return nil
		})
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("turn failed: %w", err)
		}

		return nil, out, nil
	}
}

// makeSearchHandler creates the search_corpus tool handler: embed the
// query, return raw scored chunks without generation.
func makeSearchHandler(embedder chat.QueryEmbedder, store chat.SearchStore) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, SearchOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = 5
		}

		retriever, err := chat.NewRetriever(embedder, store, maxResults)
		if err != nil {
			return nil, SearchOutput{}, err
		}

		hits, err := retriever.Retrieve(ctx, input.Query)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(hits) == 0 {
			return nil, SearchOutput{
				Results: []SourceHit{},
				Message: "No matching chunks found. Try broader search terms.",
			}, nil
		}

		return nil, SearchOutput{Results: toSourceHits(hits)}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(counter Counter) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		count, err := counter.Count(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to count indexed vectors: %w", err)
		}

		return nil, StatusOutput{
			IndexedVectors: count,
			CheckedAt:      time.Now().UTC(),
		}, nil
	}
}

func toSourceHits(hits domain.RetrievalResult) []SourceHit {
	out := make([]SourceHit, len(hits))
	for i, h := range hits {
		out[i] = SourceHit{
			Text:     h.Text,
			SourceID: h.SourceID,
			Score:    h.Score,
		}
	}
	return out
}
