// Package chat implements the per-turn query pipeline: rewrite the
// utterance into a standalone query, embed and retrieve evidence, assemble
// it into one block, and generate a grounded answer.
package chat

import (
	"context"
	"log/slog"

	"github.com/docchat/docchat/internal/domain"
)

// Response is the outcome of one successful conversation turn.
type Response struct {
	Answer  string                 // Grounded answer or NoAnswerFallback
	Query   string                 // Standalone query after rewriting
	Sources domain.RetrievalResult // Evidence used for the answer
}

// Pipeline composes rewriter, retriever, assembler, and generator. Stages
// run strictly in sequence: each stage's input is the previous stage's
// output.
type Pipeline struct {
	rewriter  *Rewriter
	retriever *Retriever
	generator *Generator
	logger    *slog.Logger
}

// NewPipeline builds the query pipeline. topK is validated here, before
// any turn runs.
func NewPipeline(model ChatModel, embedder QueryEmbedder, store SearchStore, topK int, logger *slog.Logger) (*Pipeline, error) {
	retriever, err := NewRetriever(embedder, store, topK)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		rewriter:  NewRewriter(model),
		retriever: retriever,
		generator: NewGenerator(model),
		logger:    logger,
	}, nil
}

// Ask runs one conversation turn against the given history. History is
// mutated only when the whole turn succeeds; a failed turn surfaces a
// ServiceError naming the stage and leaves the history untouched, so the
// user may safely re-ask.
func (p *Pipeline) Ask(ctx context.Context, history *domain.History, utterance string) (*Response, error) {
	query, err := p.rewriter.Rewrite(ctx, history, utterance)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Rewrote utterance", "query", query)

	hits, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Retrieved evidence", "hits", len(hits))

	evidence := Assemble(hits)

	answer, err := p.generator.Answer(ctx, history, query, evidence)
	if err != nil {
		return nil, err
	}

	return &Response{
		Answer:  answer,
		Query:   query,
		Sources: hits,
	}, nil
}
