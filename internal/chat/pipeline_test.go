package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/domain"
	"github.com/docchat/docchat/internal/ingest"
	"github.com/docchat/docchat/internal/storage"
	"github.com/docchat/docchat/internal/storage/memstore"
)

const testDim = 8

// bucketEmbedder is a deterministic embedder: each character adds weight
// to one vector bucket, so similar texts land near each other.
type bucketEmbedder struct {
	failQueries bool
}

func (e *bucketEmbedder) embed(text string) []float32 {
	v := make([]float32, testDim)
	for _, r := range text {
		v[int(r)%testDim]++
	}
	return v
}

func (e *bucketEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *bucketEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.failQueries {
		return nil, errors.New("embedding service unavailable")
	}
	return e.embed(text), nil
}

// modelCall records one chat-model invocation for assertions.
type modelCall struct {
	turns  []domain.Turn
	system string
}

// fakeModel scripts the chat model. Rewrite calls are recognized by their
// instruction; everything else is treated as a generation call.
type fakeModel struct {
	calls        []modelCall
	rewriteOut   string
	answerOut    string
	failRewrite  bool
	failGenerate bool
}

func (m *fakeModel) Generate(ctx context.Context, turns []domain.Turn, system string) (string, error) {
	m.calls = append(m.calls, modelCall{turns: turns, system: system})

	if system == rewriteInstruction {
		if m.failRewrite {
			return "", errors.New("rewrite model unavailable")
		}
		if m.rewriteOut != "" {
			return m.rewriteOut, nil
		}
		// Echo the latest user message, i.e. already standalone.
		return turns[len(turns)-1].Text, nil
	}

	if m.failGenerate {
		return "", errors.New("generation model unavailable")
	}
	if m.answerOut != "" {
		return m.answerOut, nil
	}
	return "Answer based on: " + system, nil
}

func (m *fakeModel) rewriteCalls() []modelCall {
	var out []modelCall
	for _, c := range m.calls {
		if c.system == rewriteInstruction {
			out = append(out, c)
		}
	}
	return out
}

func newTestPipeline(t *testing.T, model ChatModel, store SearchStore, topK int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(model, &bucketEmbedder{}, store, topK, nil)
	require.NoError(t, err)
	return p
}

func TestRewriteDoesNotMutateHistory(t *testing.T) {
	model := &fakeModel{rewriteOut: "What is the capital of France?"}
	rewriter := NewRewriter(model)

	history := domain.NewHistory()
	history.AppendExchange("What is France?", "A country in Europe.")

	query, err := rewriter.Rewrite(context.Background(), history, "And its capital?")
	require.NoError(t, err)
	assert.Equal(t, "What is the capital of France?", query)

	// The provisional turn was sent to the model but never persisted.
	require.Len(t, model.calls, 1)
	sent := model.calls[0].turns
	require.Len(t, sent, 3)
	assert.Equal(t, domain.RoleUser, sent[2].Role)
	assert.Equal(t, "And its capital?", sent[2].Text)

	assert.Equal(t, 2, history.Len(), "rewrite must not mutate history")
}

func TestRewriteInvokedOnFirstTurn(t *testing.T) {
	model := &fakeModel{}
	store := memstore.New(testDim)
	p := newTestPipeline(t, model, store, 5)

	history := domain.NewHistory()
	_, err := p.Ask(context.Background(), history, "What is a B-tree?")
	require.NoError(t, err)

	require.Len(t, model.rewriteCalls(), 1, "rewrite runs even with empty history")
	assert.Len(t, model.rewriteCalls()[0].turns, 1)
}

func TestHistoryLengthAfterNTurns(t *testing.T) {
	model := &fakeModel{}
	store := memstore.New(testDim)
	p := newTestPipeline(t, model, store, 5)

	history := domain.NewHistory()
	ctx := context.Background()

	const n = 4
	for i := 0; i < n; i++ {
		_, err := p.Ask(ctx, history, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	assert.Equal(t, 2*n, history.Len(), "one user + one model turn per exchange, no stray provisional entries")

	// Externally visible history ends in a model turn.
	turns := history.Turns()
	assert.Equal(t, domain.RoleModel, turns[len(turns)-1].Role)
}

func TestFallbackExactOnEmptyRetrieval(t *testing.T) {
	model := &fakeModel{}
	store := memstore.New(testDim) // nothing ingested
	p := newTestPipeline(t, model, store, 10)

	history := domain.NewHistory()
	resp, err := p.Ask(context.Background(), history, "What does the document say about quasars?")
	require.NoError(t, err)

	assert.Equal(t, NoAnswerFallback, resp.Answer, "fallback must match exactly")
	assert.Empty(t, resp.Sources)
	assert.Equal(t, 2, history.Len(), "the fallback is a successful outcome and completes the exchange")
}

func TestGenerateFailureLeavesHistoryUnchanged(t *testing.T) {
	model := &fakeModel{failGenerate: true}
	store := memstore.New(testDim)
	embedder := &bucketEmbedder{}

	// Index one chunk so generation is actually reached.
	vec, err := embedder.EmbedQuery(context.Background(), "some indexed text")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(context.Background(), []storage.IndexedVector{
		{ID: "doc#0", Embedding: vec, Text: "some indexed text", SourceID: "doc"},
	}))

	p, err := NewPipeline(model, embedder, store, 5, nil)
	require.NoError(t, err)

	history := domain.NewHistory()
	_, err = p.Ask(context.Background(), history, "what is indexed?")
	require.Error(t, err)

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "generate", svcErr.Stage)
	assert.Equal(t, 0, history.Len(), "failed turn must not mutate history")

	// The same utterance can be retried on the normal success path.
	model.failGenerate = false
	resp, err := p.Ask(context.Background(), history, "what is indexed?")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.Equal(t, 2, history.Len())
}

func TestRewriteFailureSurfacesStage(t *testing.T) {
	model := &fakeModel{failRewrite: true}
	store := memstore.New(testDim)
	p := newTestPipeline(t, model, store, 5)

	history := domain.NewHistory()
	_, err := p.Ask(context.Background(), history, "anything")
	require.Error(t, err)

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "rewrite", svcErr.Stage)
	assert.Equal(t, 0, history.Len())
}

func TestEmbedFailureSurfacesStage(t *testing.T) {
	model := &fakeModel{}
	store := memstore.New(testDim)
	p, err := NewPipeline(model, &bucketEmbedder{failQueries: true}, store, 5, nil)
	require.NoError(t, err)

	history := domain.NewHistory()
	_, err = p.Ask(context.Background(), history, "anything")
	require.Error(t, err)

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "embed", svcErr.Stage)
}

type failingStore struct{}

func (failingStore) Query(ctx context.Context, vector []float32, topK int) (domain.RetrievalResult, error) {
	return nil, errors.New("store unavailable")
}

func TestRetrieveFailureSurfacesStage(t *testing.T) {
	p := newTestPipeline(t, &fakeModel{}, failingStore{}, 5)

	history := domain.NewHistory()
	_, err := p.Ask(context.Background(), history, "anything")
	require.Error(t, err)

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "retrieve", svcErr.Stage)
	assert.Equal(t, 0, history.Len())
}

func TestTopKValidation(t *testing.T) {
	_, err := NewPipeline(&fakeModel{}, &bucketEmbedder{}, memstore.New(testDim), 0, nil)
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewRetriever(&bucketEmbedder{}, memstore.New(testDim), -3)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestAssemble(t *testing.T) {
	results := domain.RetrievalResult{
		{Text: "first passage", Score: 0.9},
		{Text: "second passage", Score: 0.5},
	}

	assert.Equal(t, "first passage"+PassageSeparator+"second passage", Assemble(results))
	assert.Equal(t, "", Assemble(nil), "empty retrieval yields empty context, not an error")
}

// TestEndToEnd_SingleSentenceCorpus walks the full ingestion + query path
// over a one-sentence document.
func TestEndToEnd_SingleSentenceCorpus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(testDim)
	embedder := &bucketEmbedder{}

	ingestPipeline, err := ingest.NewPipeline(
		ingest.Config{ChunkSize: 1000, Overlap: 200}, embedder, store, nil)
	require.NoError(t, err)

	doc := domain.Document{
		SourceID: "notes/bst.txt",
		Text:     "Binary search trees have O(log n) average lookup time.",
	}
	report, err := ingestPipeline.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChunkCount)

	model := &fakeModel{
		rewriteOut: "What is the average lookup time of a binary search tree?",
		answerOut:  "The average lookup time of a BST is O(log n).",
	}
	queryPipeline, err := NewPipeline(model, embedder, store, 10, nil)
	require.NoError(t, err)

	history := domain.NewHistory()
	resp, err := queryPipeline.Ask(ctx, history, "What is the average lookup time of a BST?")
	require.NoError(t, err)

	assert.Equal(t, "What is the average lookup time of a binary search tree?", resp.Query)
	require.Len(t, resp.Sources, 1, "topK=10 with one indexed chunk returns exactly that chunk")
	assert.Equal(t, doc.Text, resp.Sources[0].Text)
	assert.Contains(t, resp.Answer, "O(log n)")
	assert.Equal(t, 2, history.Len())

	// The evidence block handed to the generator is the chunk text itself.
	last := model.calls[len(model.calls)-1]
	assert.Contains(t, last.system, doc.Text)
}

// TestEndToEnd_EmptyCorpus verifies an empty document produces an empty
// index and every query falls back.
func TestEndToEnd_EmptyCorpus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(testDim)
	embedder := &bucketEmbedder{}

	ingestPipeline, err := ingest.NewPipeline(
		ingest.Config{ChunkSize: 1000, Overlap: 200}, embedder, store, nil)
	require.NoError(t, err)

	report, err := ingestPipeline.Ingest(ctx, domain.Document{SourceID: "notes/empty.txt"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ChunkCount)

	queryPipeline, err := NewPipeline(&fakeModel{}, embedder, store, 10, nil)
	require.NoError(t, err)

	history := domain.NewHistory()
	resp, err := queryPipeline.Ask(ctx, history, "Is there anything in here?")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerFallback, resp.Answer)
}
