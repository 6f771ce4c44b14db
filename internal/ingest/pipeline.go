// Package ingest materializes a document corpus into the vector index:
// chunk, embed with bounded concurrency, upsert under stable IDs.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docchat/docchat/internal/chunker"
	"github.com/docchat/docchat/internal/domain"
	"github.com/docchat/docchat/internal/storage"
)

const (
	// DefaultConcurrency caps in-flight embedding requests so a large
	// corpus does not overwhelm the embedding service.
	DefaultConcurrency = 5

	// embedBatchSize is the number of chunk texts sent per embedding
	// request from the worker pool.
	embedBatchSize = 128
)

// Embedder is the embedding-client boundary used at ingestion time.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the index boundary used at ingestion time.
type VectorStore interface {
	Upsert(ctx context.Context, vectors []storage.IndexedVector) error
}

// Config holds the chunking and concurrency parameters for a pipeline.
type Config struct {
	ChunkSize   int
	Overlap     int
	Concurrency int // 0 selects DefaultConcurrency
}

// Report summarizes a single document's ingestion.
type Report struct {
	Title      string // Document title, "" for untitled sources
	ChunkCount int
}

// Result summarizes a corpus-level ingestion run.
type Result struct {
	TotalDocs      int
	TotalChunks    int
	SuccessfulDocs int
	FailedDocs     []FailedDoc
	Duration       time.Duration
}

// FailedDoc records a document whose ingestion was aborted.
type FailedDoc struct {
	SourceID string
	Reason   string
}

// Pipeline composes chunker, embedder, and vector store.
type Pipeline struct {
	cfg      Config
	embedder Embedder
	store    VectorStore
	logger   *slog.Logger
}

// NewPipeline validates configuration and builds a pipeline. Invalid
// chunking parameters fail fast with a ConfigError before any I/O.
func NewPipeline(cfg Config, embedder Embedder, store VectorStore, logger *slog.Logger) (*Pipeline, error) {
	if cfg.ChunkSize <= 0 {
		return nil, &domain.ConfigError{Param: "chunkSize", Reason: fmt.Sprintf("must be positive, got %d", cfg.ChunkSize)}
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, &domain.ConfigError{Param: "overlap", Reason: fmt.Sprintf("must satisfy 0 <= overlap < chunkSize, got %d", cfg.Overlap)}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}, nil
}

// Ingest indexes one document. Embedding runs through a bounded worker
// pool; any failed call aborts the whole document (no partial index state)
// and the caller may retry from scratch.
func (p *Pipeline) Ingest(ctx context.Context, doc domain.Document) (*Report, error) {
	chunks, err := chunker.Split(doc, p.cfg.ChunkSize, p.cfg.Overlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		p.logger.Info("Nothing to ingest", "source", doc.SourceID)
		return &Report{Title: doc.Title, ChunkCount: 0}, nil
	}
	p.logger.Debug("Chunked document", "source", doc.SourceID, "chunks", len(chunks))

	embeddings := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i, c := range chunks[start:end] {
				texts[i] = c.Text
			}
			vectors, err := p.embedder.EmbedTexts(gctx, texts)
			if err != nil {
				return fmt.Errorf("chunks %d-%d: %w", start, end, err)
			}
			if len(vectors) != end-start {
				return fmt.Errorf("chunks %d-%d: got %d embeddings for %d texts", start, end, len(vectors), end-start)
			}
			// Batches own disjoint index ranges, so no lock is needed.
			copy(embeddings[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &domain.ServiceError{Stage: "embed", Err: err}
	}

	vectors := make([]storage.IndexedVector, len(chunks))
	for i, c := range chunks {
		vectors[i] = storage.IndexedVector{
			ID:        c.Key(),
			Embedding: embeddings[i],
			Text:      c.Text,
			SourceID:  c.SourceID,
			Title:     doc.Title,
		}
	}

	if err := p.store.Upsert(ctx, vectors); err != nil {
		return nil, &domain.ServiceError{Stage: "store", Err: err}
	}

	p.logger.Info("Ingested document", "source", doc.SourceID, "title", doc.Title, "chunks", len(chunks))
	return &Report{Title: doc.Title, ChunkCount: len(chunks)}, nil
}

// IngestAll indexes a whole corpus. A failed document is recorded and
// skipped; the run continues with the remaining documents.
func (p *Pipeline) IngestAll(ctx context.Context, docs []domain.Document) *Result {
	start := time.Now()
	result := &Result{TotalDocs: len(docs)}

	for _, doc := range docs {
		report, err := p.Ingest(ctx, doc)
		if err != nil {
			p.logger.Warn("Failed to ingest document", "source", doc.SourceID, "error", err)
			result.FailedDocs = append(result.FailedDocs, FailedDoc{
				SourceID: doc.SourceID,
				Reason:   err.Error(),
			})
			continue
		}
		result.SuccessfulDocs++
		result.TotalChunks += report.ChunkCount
	}

	result.Duration = time.Since(start)
	p.logger.Info("Ingestion complete",
		"successful", result.SuccessfulDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return result
}
