// Package llm adapts the OpenAI chat completions API to the stateless
// chat-model boundary used by the query pipeline: the caller supplies the
// full conversation context on every call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/docchat/docchat/internal/domain"
)

// DefaultModel is the chat model used for query rewriting and grounded
// answer generation.
const DefaultModel = openai.ChatModelGPT4o

// ChatModel generates completions from a turn sequence plus a system
// instruction. It holds a long-lived OpenAI client shared with the
// embedder.
type ChatModel struct {
	client *openai.Client
	model  string
}

// NewChatModel creates a ChatModel on an existing OpenAI client. An empty
// model selects DefaultModel.
func NewChatModel(client *openai.Client, model string) *ChatModel {
	if model == "" {
		model = DefaultModel
	}
	return &ChatModel{
		client: client,
		model:  model,
	}
}

// Generate produces one completion for the given history and system
// instruction. Rate limit errors (HTTP 429) retry with exponential
// backoff; other errors are permanent.
func (m *ChatModel) Generate(ctx context.Context, turns []domain.Turn, system string) (string, error) {
	messages := buildMessages(turns, system)

	var out string

	operation := func() error {
		resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: messages,
			Model:    m.model,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // Retry with backoff
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("chat completion returned no choices"))
		}
		out = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	return out, nil
}

// buildMessages maps conversation turns onto chat completion messages,
// with the system instruction first when present. User turns map to user
// messages and model turns to assistant messages.
func buildMessages(turns []domain.Turn, system string) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, turn := range turns {
		switch turn.Role {
		case domain.RoleModel:
			messages = append(messages, openai.AssistantMessage(turn.Text))
		default:
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}
	return messages
}

// isRateLimitError checks for an HTTP 429 from the OpenAI API.
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
