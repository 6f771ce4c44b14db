package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/chunker"
	"github.com/docchat/docchat/internal/corpus"
	"github.com/docchat/docchat/internal/domain"
	"github.com/docchat/docchat/internal/embedding"
	"github.com/docchat/docchat/internal/ingest"
	"github.com/docchat/docchat/internal/storage/memstore"
)

var (
	chatTopK        int
	chatStore       string
	chatDir         string
	chatShowSources bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive grounded chat over the indexed corpus",
	Long: `Starts a read-prompt/print-response loop. Each line of input is one
conversation turn: the utterance is rewritten into a standalone query,
matched against the index, and answered using only the retrieved evidence.

With --store qdrant (default) the corpus must have been ingested first.
With --store memory the corpus from --dir is ingested in-process at
startup and nothing persists after exit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVar(&chatTopK, "top-k", 5, "number of chunks retrieved per query")
	chatCmd.Flags().StringVar(&chatStore, "store", "qdrant", "vector store backend: qdrant or memory")
	chatCmd.Flags().StringVar(&chatDir, "dir", "", "corpus directory (required with --store memory)")
	chatCmd.Flags().BoolVar(&chatShowSources, "sources", false, "print retrieved sources with each answer")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	model := newChatModel(client)

	store, cleanup, err := openChatStore(cmd, embedder)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline, err := chat.NewPipeline(model, embedder, store, chatTopK, slog.Default())
	if err != nil {
		return err
	}

	history := domain.NewHistory()
	fmt.Println("Ask questions about the corpus. Ctrl-D or \"exit\" to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		utterance := scanner.Text()
		if utterance == "" {
			continue
		}
		if utterance == "exit" || utterance == "quit" {
			break
		}

		resp, err := pipeline.Ask(ctx, history, utterance)
		if err != nil {
			// The failed turn left history untouched; the session stays
			// usable and the same question can be re-asked.
			var svcErr *domain.ServiceError
			if errors.As(err, &svcErr) {
				fmt.Printf("Turn failed at %s stage: %v\nPlease try again.\n", svcErr.Stage, svcErr.Err)
				continue
			}
			return err
		}

		fmt.Println(resp.Answer)
		if chatShowSources && len(resp.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range resp.Sources {
				fmt.Printf("  - %s (score %.3f)\n", src.SourceID, src.Score)
			}
		}
		fmt.Println()
	}

	return scanner.Err()
}

// openChatStore opens the configured vector store backend. The memory
// backend ingests the --dir corpus in-process before the loop starts.
func openChatStore(cmd *cobra.Command, embedder *embedding.Embedder) (chat.SearchStore, func(), error) {
	switch chatStore {
	case "qdrant":
		store, err := newQdrantStore(cmd)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "memory":
		if chatDir == "" {
			return nil, nil, fmt.Errorf("--dir is required with --store memory")
		}
		store := memstore.New(embedding.Dimension)
		if err := ingestIntoMemory(cmd.Context(), embedder, store); err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", chatStore)
	}
}

func ingestIntoMemory(ctx context.Context, embedder *embedding.Embedder, store *memstore.Store) error {
	docs, err := corpus.NewDirLoader(chatDir).Load(ctx)
	if err != nil {
		return err
	}

	pipeline, err := ingest.NewPipeline(ingest.Config{
		ChunkSize: chunker.DefaultChunkSize,
		Overlap:   chunker.DefaultOverlap,
	}, embedder, store, slog.Default())
	if err != nil {
		return err
	}

	result := pipeline.IngestAll(ctx, docs)
	fmt.Printf("Indexed %d chunks from %d documents\n", result.TotalChunks, result.SuccessfulDocs)
	for _, failed := range result.FailedDocs {
		fmt.Printf("  failed: %s: %s\n", failed.SourceID, failed.Reason)
	}
	return nil
}
