package chat

import (
	"context"
	"strings"

	"github.com/docchat/docchat/internal/domain"
)

const rewriteInstruction = `You rewrite conversational follow-up questions into standalone questions.
Given the conversation so far, rephrase the latest user message into a single
self-contained question that can be understood without any prior context.
Resolve all pronouns and references. If the message is already standalone,
return it unchanged. Output only the rewritten question, nothing else.`

// Rewriter turns a context-dependent follow-up utterance into a standalone
// query. It is a pure function over a snapshot of the history: the
// provisional turn used for rewriting never touches the real history.
type Rewriter struct {
	model ChatModel
}

// NewRewriter creates a Rewriter on the given chat model.
func NewRewriter(model ChatModel) *Rewriter {
	return &Rewriter{model: model}
}

// Rewrite returns the standalone form of utterance. The rewrite step runs
// even on the first turn (empty history), where the model is expected to
// return the input unchanged. Output quality is a best-effort
// instruction-following contract; no syntactic verification happens here.
func (r *Rewriter) Rewrite(ctx context.Context, history *domain.History, utterance string) (string, error) {
	turns := append(history.Turns(), domain.Turn{Role: domain.RoleUser, Text: utterance})

	out, err := r.model.Generate(ctx, turns, rewriteInstruction)
	if err != nil {
		return "", &domain.ServiceError{Stage: "rewrite", Err: err}
	}

	query := strings.TrimSpace(out)
	if query == "" {
		return utterance, nil
	}
	return query, nil
}
