package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/chunker"
	"github.com/docchat/docchat/internal/corpus"
	"github.com/docchat/docchat/internal/domain"
	"github.com/docchat/docchat/internal/ingest"
)

var (
	ingestDir         string
	ingestGitHub      string
	ingestGitHubPath  string
	ingestChunkSize   int
	ingestOverlap     int
	ingestConcurrency int
	ingestClear       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a document corpus into the vector store",
	Long: `Loads documents from a local directory or a GitHub repository,
splits them into overlapping chunks, embeds the chunks, and upserts them
into Qdrant under stable per-chunk IDs. Re-running with the same corpus
and chunking parameters overwrites instead of duplicating.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "local directory of .md/.txt files")
	ingestCmd.Flags().StringVar(&ingestGitHub, "github", "", "GitHub repository as owner/repo")
	ingestCmd.Flags().StringVar(&ingestGitHubPath, "path", "", "base path within the GitHub repository")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", chunker.DefaultChunkSize, "chunk size in bytes")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", chunker.DefaultOverlap, "overlap between consecutive chunks in bytes")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", ingest.DefaultConcurrency, "max in-flight embedding requests")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the existing collection before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	docs, err := loadCorpus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d documents\n", len(docs))

	store, err := newQdrantStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if ingestClear {
		fmt.Println("Clearing existing collection...")
		if err := store.ClearCollection(ctx); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
	}

	_, embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	pipeline, err := ingest.NewPipeline(ingest.Config{
		ChunkSize:   ingestChunkSize,
		Overlap:     ingestOverlap,
		Concurrency: ingestConcurrency,
	}, embedder, store, slog.Default())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Ingesting documents...")
	result := pipeline.IngestAll(ctx, docs)

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Documents: %d/%d\n", result.SuccessfulDocs, result.TotalDocs)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents:")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.SourceID, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))

	return nil
}

// loadCorpus resolves the corpus source flags into documents.
func loadCorpus(ctx context.Context) ([]domain.Document, error) {
	switch {
	case ingestDir != "" && ingestGitHub != "":
		return nil, fmt.Errorf("--dir and --github are mutually exclusive")

	case ingestDir != "":
		return corpus.NewDirLoader(ingestDir).Load(ctx)

	case ingestGitHub != "":
		owner, repo, ok := strings.Cut(ingestGitHub, "/")
		if !ok {
			return nil, fmt.Errorf("--github must be owner/repo, got %q", ingestGitHub)
		}
		client, err := corpus.NewGitHubClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		return corpus.NewGitHubLoader(client, owner, repo, ingestGitHubPath).Load(ctx)

	default:
		return nil, fmt.Errorf("one of --dir or --github is required")
	}
}
