package chat

import (
	"context"
	"fmt"

	"github.com/docchat/docchat/internal/domain"
)

// NoAnswerFallback is the exact response when the evidence does not
// contain the answer. Callers and tests match it verbatim; it is a product
// guarantee, not a suggestion to the model.
const NoAnswerFallback = "I could not find the answer in the provided document."

const answerInstructionFormat = `You answer questions using ONLY the document excerpts below.
Do not use any outside knowledge. If the excerpts do not contain the
answer, respond with exactly: %q

Document excerpts:
%s`

// Generator produces a response constrained to the supplied evidence block
// and is the only writer of conversation history: a completed exchange is
// appended after, and only after, generation succeeds.
type Generator struct {
	model ChatModel
}

// NewGenerator creates a Generator on the given chat model.
func NewGenerator(model ChatModel) *Generator {
	return &Generator{model: model}
}

// Answer generates a grounded response for the standalone query. An empty
// evidence block short-circuits to NoAnswerFallback without a model call.
// On success the exchange (query + response) is appended to history; on
// failure history is left exactly as it was, so the turn can be retried.
func (g *Generator) Answer(ctx context.Context, history *domain.History, query, evidence string) (string, error) {
	if evidence == "" {
		history.AppendExchange(query, NoAnswerFallback)
		return NoAnswerFallback, nil
	}

	system := fmt.Sprintf(answerInstructionFormat, NoAnswerFallback, evidence)
	turns := append(history.Turns(), domain.Turn{Role: domain.RoleUser, Text: query})

	response, err := g.model.Generate(ctx, turns, system)
	if err != nil {
		return "", &domain.ServiceError{Stage: "generate", Err: err}
	}

	history.AppendExchange(query, response)
	return response, nil
}
