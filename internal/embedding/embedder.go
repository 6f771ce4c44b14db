package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// Model is the embedding model identifier. Ingestion and querying must
	// use the identical identifier; mixing models silently corrupts ranking.
	Model = "text-embedding-3-small"

	// Dimension is the vector size for text-embedding-3-small. Matches
	// storage.VectorDimension.
	Dimension = 1536

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute
	// rate limits. OpenAI accepts up to 2048 texts per request.
	DefaultBatchSize = 500
)

// Embedder converts text into fixed-dimensional vectors via OpenAI.
// Requests are batched, and rate limit errors retry with exponential
// backoff; each retry wait is logged.
type Embedder struct {
	client    *Client
	batchSize int
	logger    *slog.Logger
}

// NewEmbedder creates an Embedder. A batchSize of 0 selects
// DefaultBatchSize.
func NewEmbedder(client *Client, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		client:    client,
		batchSize: batchSize,
		logger:    slog.Default(),
	}
}

// EmbedTexts returns one vector per input text, order-preserving.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch := texts[i:end]

		vectors, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// EmbedQuery embeds a single query string with the same model and
// configuration used at ingestion time.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatchWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// embedBatchWithRetry embeds one batch, retrying rate limit errors (HTTP
// 429) with exponential backoff. Other errors are permanent.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: Model,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // Retry with backoff
			}
			return backoff.Permanent(err)
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	notify := func(err error, wait time.Duration) {
		e.logger.Warn("Embedding request rate limited, backing off",
			"batch_size", len(texts), "wait", wait, "error", err)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
	return vectors, err
}

// isRateLimitError checks for an HTTP 429 from the OpenAI API.
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 converts the API's float64 vectors to the float32 layout the
// vector store persists.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
